package review

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRow(t *testing.T, raw string) Row {
	t.Helper()
	var row Row
	require.NoError(t, json.Unmarshal([]byte(raw), &row))
	return row
}

func TestNormalizeFixtures(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		assert func(t *testing.T, r Review)
	}{
		{
			name:  "rating above range is clamped",
			input: `{"id":"r1","rating":7}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, 5, r.Rating)
			},
		},
		{
			name:  "rating below range is clamped",
			input: `{"id":"r1","rating":-3}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, 1, r.Rating)
			},
		},
		{
			name:  "non numeric rating defaults",
			input: `{"id":"r1","rating":"x"}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, DefaultRating, r.Rating)
			},
		},
		{
			name:  "numeric string rating is rounded",
			input: `{"id":"r1","rating":"3.5"}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, 4, r.Rating)
			},
		},
		{
			name:  "missing profile uses placeholder author",
			input: `{"id":"r1","rating":4}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, AnonymousAuthor, r.Author)
			},
		},
		{
			name:  "profile without name uses placeholder author",
			input: `{"id":"r1","user_profiles":{"full_name":null}}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, AnonymousAuthor, r.Author)
			},
		},
		{
			name:  "profile name is used",
			input: `{"id":"r1","user_profiles":{"full_name":"Laura"}}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, "Laura", r.Author)
			},
		},
		{
			name:  "product name and model are joined",
			input: `{"id":"r1","products":{"name":"Cam","model":"X1"}}`,
			assert: func(t *testing.T, r Review) {
				require.NotNil(t, r.ProductName)
				assert.Equal(t, "Cam - X1", *r.ProductName)
			},
		},
		{
			name:  "product name alone",
			input: `{"id":"r1","products":{"name":"Cam"}}`,
			assert: func(t *testing.T, r Review) {
				require.NotNil(t, r.ProductName)
				assert.Equal(t, "Cam", *r.ProductName)
			},
		},
		{
			name:  "empty product join is omitted",
			input: `{"id":"r1","products":{}}`,
			assert: func(t *testing.T, r Review) {
				assert.Nil(t, r.ProductName)
			},
		},
		{
			name:  "date is reformatted",
			input: `{"id":"r1","created_at":"2024-05-01T10:00:00Z"}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, "May 1, 2024", r.Date)
			},
		},
		{
			name:  "unparsable date is kept",
			input: `{"id":"r1","created_at":"last tuesday"}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, "last tuesday", r.Date)
			},
		},
		{
			name:  "all optional fields absent",
			input: `{"id":"r1"}`,
			assert: func(t *testing.T, r Review) {
				assert.Equal(t, Review{ID: "r1", Author: AnonymousAuthor, Rating: DefaultRating}, r)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Normalize(decodeRow(t, tc.input))
			require.NoError(t, err)
			tc.assert(t, r)
		})
	}
}

func TestNormalizeRequiresID(t *testing.T) {
	_, err := Normalize(decodeRow(t, `{"rating":4}`))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestProductNameOmittedFromJSON(t *testing.T) {
	r, err := Normalize(Row{ID: "r1"})
	require.NoError(t, err)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "product_name")
}

func TestClampRatingNonFinite(t *testing.T) {
	assert.Equal(t, DefaultRating, ClampRating(RatingOf(math.Inf(1))))
	assert.Equal(t, DefaultRating, ClampRating(RatingText("NaN")))
	assert.Equal(t, DefaultRating, ClampRating(RawRating{}))
	assert.Equal(t, 2, ClampRating(RatingOf(2.4)))
}

func TestRawRatingScan(t *testing.T) {
	var r RawRating
	require.NoError(t, r.Scan(int64(3)))
	assert.Equal(t, 3, ClampRating(r))

	require.NoError(t, r.Scan([]byte("4.6")))
	assert.Equal(t, 5, ClampRating(r))

	require.NoError(t, r.Scan(nil))
	_, ok := r.Float()
	assert.False(t, ok)

	assert.Error(t, r.Scan(true))
}

func TestFormatDateEmpty(t *testing.T) {
	assert.Equal(t, "", FormatDate(""))
	assert.Equal(t, "Mar 9, 2024", FormatDate("2024-03-09"))
	assert.Equal(t, "Mar 9, 2024", FormatDate("2024-03-09 18:22:01"))
}
