package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	t.Run("ValidTime", func(t *testing.T) {
		ts, err := NewTimeStringFromString("10:30")
		require.NoError(t, err)
		assert.Equal(t, "10:30", ts.String())
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		_, err := NewTimeStringFromString("10:30:00")
		assert.Error(t, err)

		_, err = NewTimeStringFromString("25:00")
		assert.Error(t, err)

		_, err = NewTimeStringFromString("")
		assert.Error(t, err)
	})
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("10:30")
	minutes, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 630, minutes)

	midnight := TimeString("00:00")
	minutes, err = midnight.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)
}

func TestTimeString_AddMinutes(t *testing.T) {
	t.Run("WithinDay", func(t *testing.T) {
		ts := TimeString("10:00")
		result, err := ts.AddMinutes(90)
		require.NoError(t, err)
		assert.Equal(t, "11:30", result.String())
	})

	t.Run("CrossesMidnight", func(t *testing.T) {
		ts := TimeString("23:30")
		_, err := ts.AddMinutes(60)
		assert.Error(t, err)
	})
}

func TestTimeString_Comparison(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore(TimeString("10:00")))
	assert.False(t, TimeString("10:00").IsBefore(TimeString("10:00")))
	assert.True(t, TimeString("11:00").IsAfter(TimeString("10:30")))
	assert.False(t, TimeString("10:30").IsAfter(TimeString("10:30")))
}

func TestTimeString_Scan(t *testing.T) {
	t.Run("PostgresTimeFormat", func(t *testing.T) {
		var ts TimeString
		require.NoError(t, ts.Scan("10:00:00"))
		assert.Equal(t, "10:00", ts.String())
	})

	t.Run("Bytes", func(t *testing.T) {
		var ts TimeString
		require.NoError(t, ts.Scan([]byte("14:30:00")))
		assert.Equal(t, "14:30", ts.String())
	})

	t.Run("Nil", func(t *testing.T) {
		var ts TimeString
		require.NoError(t, ts.Scan(nil))
		assert.True(t, ts.IsZero())
	})
}
