package field

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{"ABC", 6, "ABC   "},
		{"", 3, "   "},
		{"EXACT", 5, "EXACT"},
		{"Québec", 8, "Quebec  "},
		{"Zoë Côté", 30, "Zoe Cote                      "},
		{"ÉLODIE", 6, "ELODIE"},
	}
	for _, tt := range tests {
		got, err := Text(tt.value, tt.width)
		require.NoError(t, err, "Text(%q, %d)", tt.value, tt.width)
		assert.Equal(t, tt.want, got)
	}
}

func TestText_Overflow(t *testing.T) {
	_, err := Text("TOO LONG", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldOverflow)

	var oe *OverflowError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "TOO LONG", oe.Value)
	assert.Equal(t, 3, oe.Width)
}

func TestText_WidthInBytes(t *testing.T) {
	for _, v := range []string{"Zoë Côté", "Renée Bélanger-Lévesque", "Ça va"} {
		got, err := Text(v, 30)
		require.NoError(t, err, v)
		assert.Len(t, got, 30, "Text(%q) must be 30 bytes", v)
	}
}

func TestText_RejectsUnprintable(t *testing.T) {
	for _, v := range []string{"Jane\nDoe", "tab\there", "Straße", "Œuvre", "李", "bell\a"} {
		_, err := Text(v, 30)
		assert.ErrorIs(t, err, ErrInvalidValue, "Text(%q)", v)
	}
}

func TestASCII(t *testing.T) {
	got, err := ASCII("Côté Ltée")
	require.NoError(t, err)
	assert.Equal(t, "Cote Ltee", got)

	got, err = ASCII("PLAIN 123 ~!")
	require.NoError(t, err)
	assert.Equal(t, "PLAIN 123 ~!", got)

	_, err = ASCII("line\r\n")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		value int64
		width int
		want  string
	}{
		{7, 5, "00007"},
		{12345, 5, "12345"},
		{0, 9, "000000000"},
		{1, 9, "000000001"},
	}
	for _, tt := range tests {
		got, err := Number(tt.value, tt.width)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Number(%d, %d)", tt.value, tt.width)
	}
}

func TestNumber_Errors(t *testing.T) {
	_, err := Number(123456, 5)
	assert.ErrorIs(t, err, ErrFieldOverflow)

	_, err = Number(-1, 5)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestDigits(t *testing.T) {
	got, err := Digits("3", 4)
	require.NoError(t, err)
	assert.Equal(t, "0003", got)

	got, err = Digits("00310", 5)
	require.NoError(t, err)
	assert.Equal(t, "00310", got)

	_, err = Digits("12a", 5)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Digits("123456", 5)
	assert.ErrorIs(t, err, ErrFieldOverflow)
}

func TestAmount(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{"1234.5", 10, "0000123450"},
		{"0", 14, "00000000000000"},
		{"100.00", 10, "0000010000"},
		{"50.25", 10, "0000005025"},
		{"0.005", 10, "0000000001"},
		{"0.004", 10, "0000000000"},
		{"99999999.99", 10, "9999999999"},
	}
	for _, tt := range tests {
		got, err := Amount(decimal.RequireFromString(tt.value), tt.width)
		require.NoError(t, err, "Amount(%s, %d)", tt.value, tt.width)
		assert.Equal(t, tt.want, got, "Amount(%s, %d)", tt.value, tt.width)
	}
}

func TestAmount_Errors(t *testing.T) {
	_, err := Amount(decimal.RequireFromString("100000000.00"), 10)
	assert.ErrorIs(t, err, ErrFieldOverflow)

	_, err = Amount(decimal.RequireFromString("-1"), 10)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestJulian(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "023001"},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "024366"},
		{time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "025074"},
		{time.Date(2100, 2, 1, 0, 0, 0, 0, time.UTC), "100032"},
	}
	for _, tt := range tests {
		got, err := Julian(tt.date, DateWidth)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Julian(%s)", tt.date.Format("2006-01-02"))
	}
}

func TestJulian_Errors(t *testing.T) {
	_, err := Julian(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 7)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Julian(time.Time{}, DateWidth)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Julian(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), DateWidth)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestFill(t *testing.T) {
	assert.Equal(t, "0000", Fill(Zeros, 4))
	assert.Equal(t, "   ", Fill(Spaces, 3))
	assert.Equal(t, "", Fill(Zeros, 0))
}
