package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "marker plus list",
			text: "Un labrador negro en el pasto.\nTags: dog, labrador, black",
			want: []string{"dog", "labrador", "black"},
		},
		{
			name: "marker is case-insensitive",
			text: "Descripción.\nTAGS: Cat, Siamese",
			want: []string{"cat", "siamese"},
		},
		{
			name: "only the marker line is parsed",
			text: "Tags: dog, brown\nMás texto que no son tags",
			want: []string{"dog", "brown"},
		},
		{
			name: "dedupes and drops empties",
			text: "Tags: dog, Dog, , dog,  ,collar",
			want: []string{"dog", "collar"},
		},
		{
			name: "no marker means no tags",
			text: "Un perro sin etiquetas.",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "marker with nothing after",
			text: "Descripción.\nTags:",
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTags(tc.text))
		})
	}
}

func TestJaccard(t *testing.T) {
	t.Run("identical sets", func(t *testing.T) {
		sim, ok := Jaccard([]string{"dog", "black"}, []string{"dog", "black"})
		require.True(t, ok)
		assert.Equal(t, 1.0, sim)
	})

	t.Run("disjoint sets", func(t *testing.T) {
		sim, ok := Jaccard([]string{"dog"}, []string{"cat"})
		require.True(t, ok)
		assert.Equal(t, 0.0, sim)
	})

	t.Run("partial overlap", func(t *testing.T) {
		sim, ok := Jaccard([]string{"dog", "black"}, []string{"dog", "collar"})
		require.True(t, ok)
		assert.InDelta(t, 1.0/3.0, sim, 1e-12)
	})

	t.Run("one side empty", func(t *testing.T) {
		sim, ok := Jaccard([]string{"dog"}, nil)
		require.True(t, ok)
		assert.Equal(t, 0.0, sim)
	})

	t.Run("both empty is no signal", func(t *testing.T) {
		_, ok := Jaccard(nil, nil)
		assert.False(t, ok)
	})

	t.Run("duplicates do not inflate", func(t *testing.T) {
		sim, ok := Jaccard([]string{"dog", "dog"}, []string{"dog", "dog", "cat"})
		require.True(t, ok)
		assert.InDelta(t, 0.5, sim, 1e-12)
	})
}

func TestSemanticScorer(t *testing.T) {
	images := &fakeImages{byRef: map[string][]byte{
		"img-a": []byte("bytes-a"),
		"img-b": []byte("bytes-b"),
	}}

	t.Run("jaccard over parsed tags", func(t *testing.T) {
		d := &fakeDescriber{byImage: map[string]string{
			"bytes-a": "Un perro.\nTags: dog, black, collar",
			"bytes-b": "Otro perro.\nTags: dog, black, park",
		}}
		s := NewSemanticScorer(d, images, time.Second, testLogger(), nil)

		sig := s.Score(context.Background(), "img-a", "img-b")
		require.True(t, sig.IsPresent())
		assert.InDelta(t, 0.5, sig.Value(), 1e-12) // 2 compartidos / 4 en la unión
	})

	t.Run("no tags on either side is absent", func(t *testing.T) {
		d := &fakeDescriber{byImage: map[string]string{
			"bytes-a": "Descripción sin tags.",
			"bytes-b": "Otra descripción sin tags.",
		}}
		s := NewSemanticScorer(d, images, time.Second, testLogger(), nil)

		sig := s.Score(context.Background(), "img-a", "img-b")
		assert.True(t, sig.IsAbsent())
	})

	t.Run("describer failure degrades to failed", func(t *testing.T) {
		d := &fakeDescriber{err: errors.New("quota exceeded")}
		s := NewSemanticScorer(d, images, time.Second, testLogger(), nil)

		sig := s.Score(context.Background(), "img-a", "img-b")
		require.True(t, sig.IsFailed())
		assert.ErrorContains(t, sig.Err(), "quota exceeded")
	})

	t.Run("missing image degrades to failed", func(t *testing.T) {
		d := &fakeDescriber{byImage: map[string]string{}}
		s := NewSemanticScorer(d, images, time.Second, testLogger(), nil)

		sig := s.Score(context.Background(), "img-a", "img-missing")
		assert.True(t, sig.IsFailed())
	})

	t.Run("nil describer is absent", func(t *testing.T) {
		s := NewSemanticScorer(nil, images, time.Second, testLogger(), nil)
		sig := s.Score(context.Background(), "img-a", "img-b")
		assert.True(t, sig.IsAbsent())
	})
}
