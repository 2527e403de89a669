package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlbridge/sqlbridge/dbtime"
)

// advance moves the cursor to the first row.
func advance(t *testing.T, rs *ResultSet) {
	t.Helper()
	ok, err := rs.Next()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestResultSet_IndexRange(t *testing.T) {
	rs := NewResultSet(&fakeResult{
		names: []string{"id", "name"},
		rows:  [][][]byte{cells("1", "alice")},
	})
	advance(t, rs)

	for _, index := range []int{0, -1, 3, 100} {
		_, err := rs.GetString(index)
		assert.True(t, IsOutOfRange(err), "GetString(%d)", index)
		_, err = rs.GetInt(index)
		assert.True(t, IsOutOfRange(err), "GetInt(%d)", index)
		_, err = rs.GetInt64(index)
		assert.True(t, IsOutOfRange(err), "GetInt64(%d)", index)
		_, err = rs.GetFloat64(index)
		assert.True(t, IsOutOfRange(err), "GetFloat64(%d)", index)
		_, err = rs.GetBlob(index)
		assert.True(t, IsOutOfRange(err), "GetBlob(%d)", index)
		_, err = rs.GetTimestamp(index)
		assert.True(t, IsOutOfRange(err), "GetTimestamp(%d)", index)
		_, err = rs.GetDate(index)
		assert.True(t, IsOutOfRange(err), "GetDate(%d)", index)
		_, err = rs.IsNull(index)
		assert.True(t, IsOutOfRange(err), "IsNull(%d)", index)
		_, err = rs.ColumnSize(index)
		assert.True(t, IsOutOfRange(err), "ColumnSize(%d)", index)
	}

	var oor *OutOfRangeError
	_, err := rs.GetString(3)
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, 3, oor.Index)
	assert.Equal(t, 2, oor.Count)
}

func TestResultSet_ColumnProbes(t *testing.T) {
	rs := NewResultSet(&fakeResult{names: []string{"id", "label"}})

	assert.Equal(t, 2, rs.ColumnCount())

	name, ok := rs.ColumnName(1)
	assert.True(t, ok)
	assert.Equal(t, "id", name)

	// Out of range is a non-throwing probe, unlike the getters.
	_, ok = rs.ColumnName(0)
	assert.False(t, ok)
	_, ok = rs.ColumnName(3)
	assert.False(t, ok)
}

func TestResultSet_ColumnSize(t *testing.T) {
	rs := NewResultSet(&fakeResult{
		names: []string{"a", "b", "c"},
		rows:  [][][]byte{cells("hello", nil, []byte{1, 2, 3})},
	})
	advance(t, rs)

	size, err := rs.ColumnSize(1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	size, err = rs.ColumnSize(2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size, "SQL NULL has size 0")

	size, err = rs.ColumnSize(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
}

func TestResultSet_Next(t *testing.T) {
	t.Run("exhaustion is repeatable and not an error", func(t *testing.T) {
		rs := NewResultSet(&fakeResult{
			names: []string{"n"},
			rows:  [][][]byte{cells("1"), cells("2")},
		})
		for i := 0; i < 2; i++ {
			ok, err := rs.Next()
			require.NoError(t, err)
			assert.True(t, ok)
		}
		for i := 0; i < 3; i++ {
			ok, err := rs.Next()
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("empty result set", func(t *testing.T) {
		rs := NewResultSet(&fakeResult{names: []string{"n"}})
		ok, err := rs.Next()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("backend failure is a DatabaseError", func(t *testing.T) {
		rs := NewResultSet(&fakeResult{
			names:   []string{"n"},
			nextErr: errors.New("connection reset"),
		})
		_, err := rs.Next()
		assert.True(t, IsDatabaseError(err))
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestResultSet_NullHandling(t *testing.T) {
	rs := NewResultSet(&fakeResult{
		names: []string{"s", "n"},
		rows:  [][][]byte{cells(nil, nil)},
	})
	advance(t, rs)

	isNull, err := rs.IsNull(1)
	require.NoError(t, err)
	assert.True(t, isNull)

	s, err := rs.GetString(1)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	i, err := rs.GetInt(2)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i64, err := rs.GetInt64(2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), i64)

	f, err := rs.GetFloat64(2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	b, err := rs.GetBlob(1)
	require.NoError(t, err)
	assert.Nil(t, b)

	ts, err := rs.GetTimestamp(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts.Unix(), "SQL NULL timestamp is the epoch")

	d, err := rs.GetDate(1)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	tod, err := rs.GetTime(1)
	require.NoError(t, err)
	assert.True(t, tod.IsZero())

	dt, err := rs.GetDateTime(1)
	require.NoError(t, err)
	assert.True(t, dt.IsZero())
}

func TestResultSet_NullIsDistinctFromEmpty(t *testing.T) {
	rs := NewResultSet(&fakeResult{
		names: []string{"empty", "null"},
		rows:  [][][]byte{{[]byte{}, nil}},
	})
	advance(t, rs)

	isNull, err := rs.IsNull(1)
	require.NoError(t, err)
	assert.False(t, isNull, "empty string is not SQL NULL")

	isNull, err = rs.IsNull(2)
	require.NoError(t, err)
	assert.True(t, isNull)
}

func TestResultSet_NumericConversion(t *testing.T) {
	rs := NewResultSet(&fakeResult{
		names: []string{"v"},
		rows: [][][]byte{
			cells("42"),
			cells(" -7 "),
			cells("3.25"),
			cells("not a number"),
			cells("99999999999999999999"),
		},
	})

	advance(t, rs)
	i, err := rs.GetInt(1)
	require.NoError(t, err)
	assert.Equal(t, 42, i)

	advance(t, rs)
	i64, err := rs.GetInt64(1)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), i64, "surrounding whitespace is tolerated")

	advance(t, rs)
	f, err := rs.GetFloat64(1)
	require.NoError(t, err)
	assert.Equal(t, 3.25, f)
	_, err = rs.GetInt(1)
	assert.True(t, IsConversionError(err), "a float literal is not an int")

	advance(t, rs)
	_, err = rs.GetInt(1)
	assert.True(t, IsConversionError(err))
	var conv *ConversionError
	require.True(t, errors.As(err, &conv))
	assert.Equal(t, "not a number", conv.Value)
	_, err = rs.GetFloat64(1)
	assert.True(t, IsConversionError(err))

	advance(t, rs)
	_, err = rs.GetInt64(1)
	assert.True(t, IsConversionError(err), "overflow is a conversion error, not a truncation")
}

func TestResultSet_GetStringKeepsRawForm(t *testing.T) {
	// Numbers are stored as bytes and may be read back as text.
	rs := NewResultSet(&fakeResult{
		names: []string{"count"},
		rows:  [][][]byte{cells("123")},
	})
	advance(t, rs)

	s, err := rs.GetString(1)
	require.NoError(t, err)
	assert.Equal(t, "123", s)

	n, err := rs.GetInt(1)
	require.NoError(t, err)
	assert.Equal(t, 123, n)
}

func TestResultSet_ByName(t *testing.T) {
	rs := NewResultSet(&fakeResult{
		names: []string{"a", "b", "a"},
		rows:  [][][]byte{cells("first", "middle", "last")},
	})
	advance(t, rs)

	t.Run("first matching column wins on duplicates", func(t *testing.T) {
		s, err := rs.GetStringByName("a")
		require.NoError(t, err)
		assert.Equal(t, "first", s)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		_, err := rs.GetStringByName("A")
		assert.True(t, IsColumnNotFound(err))
	})

	t.Run("miss is ColumnNotFound, not OutOfRange", func(t *testing.T) {
		_, err := rs.GetStringByName("nope")
		assert.True(t, IsColumnNotFound(err))
		assert.False(t, IsOutOfRange(err))
		var cnf *ColumnNotFoundError
		require.True(t, errors.As(err, &cnf))
		assert.Equal(t, "nope", cnf.Name)
	})
}

func TestResultSet_TemporalGetters(t *testing.T) {
	rs := NewResultSet(&fakeResult{
		names: []string{"v"},
		rows: [][][]byte{
			cells("2021-03-15 10:30:00+02:00"),
			cells("2021-03-15"),
			cells("10:30:45.123456"),
			cells("2021-03-15 10:30:45"),
			cells("never o'clock"),
		},
	})

	advance(t, rs)
	ts, err := rs.GetTimestamp(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1615797000), ts.Unix())

	advance(t, rs)
	d, err := rs.GetDate(1)
	require.NoError(t, err)
	assert.Equal(t, dbtime.Date{Year: 2021, Month: 3, Day: 15}, d)

	advance(t, rs)
	tod, err := rs.GetTime(1)
	require.NoError(t, err)
	assert.Equal(t, dbtime.Time{Hour: 10, Min: 30, Sec: 45, USec: 123456}, tod)

	advance(t, rs)
	dt, err := rs.GetDateTime(1)
	require.NoError(t, err)
	assert.Equal(t, dbtime.DateTime{
		Date: dbtime.Date{Year: 2021, Month: 3, Day: 15},
		Time: dbtime.Time{Hour: 10, Min: 30, Sec: 45},
	}, dt)

	advance(t, rs)
	_, err = rs.GetTimestamp(1)
	assert.True(t, IsConversionError(err))
	_, err = rs.GetDate(1)
	assert.True(t, IsConversionError(err))
	_, err = rs.GetTime(1)
	assert.True(t, IsConversionError(err))
	_, err = rs.GetDateTime(1)
	assert.True(t, IsConversionError(err))
}

func TestResultSet_Closed(t *testing.T) {
	delegate := &fakeResult{
		names: []string{"a"},
		rows:  [][][]byte{cells("1")},
	}
	rs := NewResultSet(delegate)
	advance(t, rs)
	require.NoError(t, rs.Close())
	assert.True(t, delegate.closed)

	_, err := rs.Next()
	assert.ErrorIs(t, err, ErrResultSetClosed)
	_, err = rs.GetString(1)
	assert.ErrorIs(t, err, ErrResultSetClosed)
	_, err = rs.GetStringByName("a")
	assert.ErrorIs(t, err, ErrResultSetClosed)
	_, err = rs.IsNull(1)
	assert.ErrorIs(t, err, ErrResultSetClosed)
	_, ok := rs.ColumnName(1)
	assert.False(t, ok)

	assert.NoError(t, rs.Close(), "double close is a no-op")
}

func TestResultSet_TimestampSetterValue(t *testing.T) {
	// A timestamp bound through SetTimestamp renders in a form the
	// temporal getters accept back.
	bound := time.Date(2021, 3, 15, 10, 30, 0, 0, time.FixedZone("", 2*3600))
	rs := NewResultSet(&fakeResult{
		names: []string{"at"},
		rows:  [][][]byte{cells(bound.Format("2006-01-02 15:04:05Z07:00"))},
	})
	advance(t, rs)
	got, err := rs.GetTimestamp(1)
	require.NoError(t, err)
	assert.Equal(t, bound.Unix(), got.Unix())
}
