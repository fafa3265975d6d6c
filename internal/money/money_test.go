package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"0", 0},
		{"12.34", 1234},
		{"0.01", 1},
		{"-5", -500},
		{"200", 20000},
		{"1000.00", 100000},
		{"1.230", 123},
	}
	for _, c := range cases {
		m, err := Parse(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, c.cents, m.Cents(), c.in)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "12,34", "1e3x", "1.2.3"} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrMalformedAmount, in)
	}
}

func TestParseRejectsSubCentPrecision(t *testing.T) {
	_, err := Parse("0.001")
	require.ErrorIs(t, err, ErrMalformedAmount)

	_, err = Parse("10.005")
	require.ErrorIs(t, err, ErrMalformedAmount)
}

func TestParseOverflow(t *testing.T) {
	_, err := Parse("99999999999999999999.99")
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAddSub(t *testing.T) {
	a := FromCents(100)
	b := FromCents(30)

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, int64(130), sum.Cents())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, int64(70), diff.Cents())

	// negative intermediates are allowed; callers enforce the balance rule
	neg, err := b.Sub(a)
	require.NoError(t, err)
	require.True(t, neg.IsNegative())
}

func TestArithmeticOverflow(t *testing.T) {
	max := FromCents(math.MaxInt64)
	_, err := max.Add(FromCents(1))
	require.ErrorIs(t, err, ErrOverflow)

	min := FromCents(math.MinInt64)
	_, err = min.Sub(FromCents(1))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = FromCents(0).Sub(min)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestCmp(t *testing.T) {
	require.Equal(t, -1, FromCents(1).Cmp(FromCents(2)))
	require.Equal(t, 0, FromCents(2).Cmp(FromCents(2)))
	require.Equal(t, 1, FromCents(3).Cmp(FromCents(2)))
}

func TestString(t *testing.T) {
	require.Equal(t, "12.34", FromCents(1234).String())
	require.Equal(t, "0.05", FromCents(5).String())
	require.Equal(t, "-1.00", FromCents(-100).String())
}

func TestJSONRoundTrip(t *testing.T) {
	m := FromCents(199)
	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, `"1.99"`, string(b))

	var back Money
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, int64(199), back.Cents())
}
