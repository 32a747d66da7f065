package entrylog

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBotlyNoob/FIRSTrun/logger"
	"github.com/TheBotlyNoob/FIRSTrun/schema"
	"github.com/TheBotlyNoob/FIRSTrun/value"
)

func TestMain(m *testing.M) {
	logger.SetWriter(io.Discard)
	os.Exit(m.Run())
}

func int64Bytes(v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func doubleBytes(vs ...float64) []byte {
	var b []byte
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

func TestAddRawScalar(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("robot/speed", 100, "int64", int64Bytes(3)))

	v, ok := s.GetLatestAtOrBefore("robot/speed", 100)
	require.True(t, ok)
	assert.Equal(t, value.Int64(3), v)
}

func TestChangedDrainOnce(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("a", 1, "int64", int64Bytes(1)))
	require.NoError(t, s.AddRaw("b", 2, "int64", int64Bytes(2)))

	changed := s.GetChanged()
	assert.Len(t, changed, 2)
	assert.Empty(t, s.GetChanged())

	require.NoError(t, s.AddRaw("a", 3, "int64", int64Bytes(3)))
	changed = s.GetChanged()
	require.Len(t, changed, 1)
	assert.Equal(t, Path("a"), changed[0].Path)
	assert.Equal(t, uint64(3), changed[0].Timestamp)
	assert.Equal(t, value.Int64(3), changed[0].Value)
}

func TestLatestAtOrBeforeBounds(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("p", 10, "int64", int64Bytes(1)))
	require.NoError(t, s.AddRaw("p", 20, "int64", int64Bytes(2)))

	_, ok := s.GetLatestAtOrBefore("p", 9)
	assert.False(t, ok)

	for _, ts := range []uint64{10, 15, 19} {
		v, ok := s.GetLatestAtOrBefore("p", ts)
		require.True(t, ok, ts)
		assert.Equal(t, value.Int64(1), v, ts)
	}
	for _, ts := range []uint64{20, 21, 1 << 40} {
		v, ok := s.GetLatestAtOrBefore("p", ts)
		require.True(t, ok, ts)
		assert.Equal(t, value.Int64(2), v, ts)
	}
}

func TestEqualTimestampOverwrites(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("p", 5, "int64", int64Bytes(1)))
	require.NoError(t, s.AddRaw("p", 5, "int64", int64Bytes(9)))

	v, ok := s.GetLatestAtOrBefore("p", 5)
	require.True(t, ok)
	assert.Equal(t, value.Int64(9), v)

	var count int
	s.Series("p", func(uint64, value.Value) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count)
}

func TestStructFlattening(t *testing.T) {
	s := NewStore()
	s.RegisterSchema("Rotation2d", schema.Parse("double value"))
	s.RegisterSchema("Translation2d", schema.Parse("double x; double y"))
	s.RegisterSchema("Pose2d", schema.Parse("Translation2d translation; Rotation2d rotation"))

	require.NoError(t, s.AddRaw("robot/pose", 50, "struct:Pose2d", doubleBytes(1, 2, 0.5)))

	x, ok := s.GetLatestAtOrBefore("robot/pose/translation/x", 50)
	require.True(t, ok)
	assert.Equal(t, value.Double(1), x)
	y, _ := s.GetLatestAtOrBefore("robot/pose/translation/y", 50)
	assert.Equal(t, value.Double(2), y)
	rot, _ := s.GetLatestAtOrBefore("robot/pose/rotation/value", 50)
	assert.Equal(t, value.Double(0.5), rot)

	// composite roots flatten away; only leaves are stored
	_, ok = s.GetLatestAtOrBefore("robot/pose", 50)
	assert.False(t, ok)
}

func TestStructArrayFlattening(t *testing.T) {
	s := NewStore()
	s.RegisterSchema("Translation2d", schema.Parse("double x; double y"))

	require.NoError(t, s.AddRaw("path", 7, "struct:Translation2d[]", doubleBytes(1, 2, 3, 4)))

	length, ok := s.GetLatestAtOrBefore("path/length", 7)
	require.True(t, ok)
	assert.Equal(t, value.Int64(2), length)

	x1, _ := s.GetLatestAtOrBefore("path/1/x", 7)
	assert.Equal(t, value.Double(3), x1)
}

func TestDeferredDecodeOrderIndependent(t *testing.T) {
	poseBytes := doubleBytes(1, 2, 0.5)

	// register first, then decode
	direct := NewStore()
	direct.RegisterSchema("Rotation2d", schema.Parse("double value"))
	direct.RegisterSchema("Translation2d", schema.Parse("double x; double y"))
	direct.RegisterSchema("Pose2d", schema.Parse("Translation2d translation; Rotation2d rotation"))
	require.NoError(t, direct.AddRaw("pose", 9, "struct:Pose2d", poseBytes))

	// decode first, then register: the replay must produce the same values
	deferred := NewStore()
	require.NoError(t, deferred.AddRaw("pose", 9, "struct:Pose2d", poseBytes))
	assert.Equal(t, 1, deferred.PendingCount())
	assert.Empty(t, deferred.GetChanged())

	deferred.RegisterSchema("Pose2d", schema.Parse("Translation2d translation; Rotation2d rotation"))
	// still missing the nested names: the replay re-queued
	assert.Equal(t, 1, deferred.PendingCount())

	deferred.RegisterSchema("Translation2d", schema.Parse("double x; double y"))
	assert.Equal(t, 1, deferred.PendingCount())

	deferred.RegisterSchema("Rotation2d", schema.Parse("double value"))
	assert.Equal(t, 0, deferred.PendingCount())

	for _, path := range []Path{
		"pose/translation/x", "pose/translation/y", "pose/rotation/value",
	} {
		want, ok := direct.GetLatestAtOrBefore(path, 9)
		require.True(t, ok, path)
		got, ok := deferred.GetLatestAtOrBefore(path, 9)
		require.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
}

func TestPendingReplayOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("a", 1, "struct:T", int64Bytes(1)))
	require.NoError(t, s.AddRaw("a", 2, "struct:T", int64Bytes(2)))
	require.NoError(t, s.AddRaw("a", 3, "struct:T", int64Bytes(3)))
	assert.Equal(t, 3, s.PendingCount())

	s.RegisterSchema("T", schema.Parse("int64 v"))

	var got []uint64
	s.Series("a/v", func(ts uint64, _ value.Value) bool {
		got = append(got, ts)
		return true
	})
	assert.Equal(t, []uint64{1, 2, 3}, got)
}

func TestSchemaDefRegistersAndDrains(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("robot/pose", 5, "struct:Simple", doubleBytes(3)))
	assert.Equal(t, 1, s.PendingCount())

	// schema entries carry the struct: prefix in their last path segment;
	// registration must still drain the queue keyed on the bare name
	require.NoError(t, s.AddRaw(
		FromName("/.schema/struct:Simple"), 6, "structschema", []byte("double v")))

	assert.Equal(t, 0, s.PendingCount())
	v, ok := s.GetLatestAtOrBefore("robot/pose/v", 5)
	require.True(t, ok)
	assert.Equal(t, value.Double(3), v)

	_, ok = s.Registry().Lookup("Simple")
	assert.True(t, ok)
}

func TestDecodeFailureIsolated(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("good", 1, "int64", int64Bytes(1)))
	require.Error(t, s.AddRaw("bad", 1, "int64", []byte{1, 2}))
	require.NoError(t, s.AddRaw("good", 2, "int64", int64Bytes(2)))

	v, ok := s.GetLatestAtOrBefore("good", 2)
	require.True(t, ok)
	assert.Equal(t, value.Int64(2), v)
	_, ok = s.GetLatestAtOrBefore("bad", 1)
	assert.False(t, ok)
}

func TestPathsAndMatch(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRaw("robot/speed", 1, "int64", int64Bytes(1)))
	require.NoError(t, s.AddRaw("robot/angle", 1, "int64", int64Bytes(2)))
	require.NoError(t, s.AddRaw("fms/match", 1, "int64", int64Bytes(3)))

	assert.Equal(t, []Path{"fms/match", "robot/angle", "robot/speed"}, s.Paths())
	assert.Equal(t, []Path{"robot/angle", "robot/speed"}, s.MatchPaths("robot/*"))
	assert.Empty(t, s.MatchPaths("nothing/*"))
}

func TestGetLatest(t *testing.T) {
	s := NewStore()
	_, _, ok := s.GetLatest("p")
	assert.False(t, ok)

	require.NoError(t, s.AddRaw("p", 10, "int64", int64Bytes(1)))
	require.NoError(t, s.AddRaw("p", 30, "int64", int64Bytes(3)))
	require.NoError(t, s.AddRaw("p", 20, "int64", int64Bytes(2)))

	ts, v, ok := s.GetLatest("p")
	require.True(t, ok)
	assert.Equal(t, uint64(30), ts)
	assert.Equal(t, value.Int64(3), v)
}

func TestPathHelpers(t *testing.T) {
	p := PathOf("robot", "pose", "x")
	assert.Equal(t, Path("robot/pose/x"), p)
	assert.Equal(t, Path("robot/pose"), p.Parent())
	assert.Equal(t, "x", p.Last())
	assert.Equal(t, Path(""), Path("root").Parent())
	assert.Equal(t, Path("robot/pose"), FromName("/robot/pose"))
	assert.Equal(t, Path("a/b"), Path("a").Join("b"))
	assert.Equal(t, Path("b"), Path("").Join("b"))
}
