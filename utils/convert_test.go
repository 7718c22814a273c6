// Package utils
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEtherToWei(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1.5", want: "1500000000000000000"},
		{in: "0.001", want: "1000000000000000"},
		{in: " 1000 ", want: "1000000000000000000000"},
		{in: "0.123456789012345678", want: "123456789012345678"},
		{in: ".5", want: "500000000000000000"},
	}
	for _, tc := range tests {
		wei, err := EtherToWei(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, wei.String(), tc.in)
	}

	_, err := EtherToWei("")
	assert.Error(t, err)
	_, err = EtherToWei("abc")
	assert.Error(t, err)
}

func TestParseDecimal_RejectsNonPlain(t *testing.T) {
	for _, in := range []string{"1e3", "1E3", "1e20000000", "-1", "+1", "0x10", "1.2.3", "1,5", "Infinity", "NaN"} {
		_, err := ParseDecimal(in)
		assert.Error(t, err, in)
	}

	_, err := ParseDecimal("0.1234567890123456789")
	assert.ErrorIs(t, err, ErrTooManyDecimals)
	_, err = EtherToWei("0.1234567890123456789")
	assert.ErrorIs(t, err, ErrTooManyDecimals)

	d, err := ParseDecimal(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "1.5000", FormatEther("1500000000000000000", 4))
	assert.Equal(t, "0.0100", FormatEther("10000000000000000", 4))
	assert.Equal(t, "0.0000", FormatEther("", 4))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, int64(50), Percentage("2000000000000000000", "1000000000000000000"))
	assert.Equal(t, int64(150), Percentage("2", "3"))
	assert.Equal(t, int64(33), Percentage("3", "1"))
	assert.Equal(t, int64(0), Percentage("0", "1"))
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xAbCdEf0000000000000000000000000000000001", "0xabcdef0000000000000000000000000000000001"))
	assert.False(t, SameAddress("0xabcdef0000000000000000000000000000000001", "0xabcdef0000000000000000000000000000000002"))
	assert.False(t, SameAddress("", ""))
	assert.True(t, IsValidAddress("0xabcdef0000000000000000000000000000000001"))
	assert.False(t, IsValidAddress("abcdef"))
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(1), DaysLeft(now.Add(time.Hour).Unix(), now))
	assert.Equal(t, int64(2), DaysLeft(now.Add(25*time.Hour).Unix(), now))
	assert.Equal(t, int64(0), DaysLeft(now.Add(-time.Second).Unix(), now))
}

func TestParseDeadline(t *testing.T) {
	d, err := ParseDeadline("2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDeadline("2026-03-04T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1772611200), d.Unix())

	_, err = ParseDeadline("")
	assert.Error(t, err)
	_, err = ParseDeadline("04/03/2026")
	assert.Error(t, err)
}
