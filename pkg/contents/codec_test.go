package contents_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `dir /usr
dir /usr/bin
obj /usr/bin/hello 5d41402abc4b2a76b9719d911017c592 1700000000
sym /usr/bin/hi -> hello 1700000001

fif /run/hello.fifo
dev /dev/hello0
obj /usr/share/doc/with space.txt 0d41402abc4b2a76b9719d911017c592 5
`

func TestParseRecord(t *testing.T) {
	s, err := contents.Parse(strings.NewReader(sampleRecord))
	require.NoError(t, err)
	assert.Equal(t, 7, s.Len())

	e, ok := s.Get("/usr/bin/hello")
	require.True(t, ok)
	f := e.(*fsentry.File)
	digest, err := f.Checksum("md5")
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", chksum.Format(digest))
	assert.Equal(t, int64(1700000000), f.Mtime().Unix())

	e, ok = s.Get("/usr/bin/hi")
	require.True(t, ok)
	assert.Equal(t, "hello", e.(*fsentry.Symlink).Target())

	e, _ = s.Get("/run/hello.fifo")
	assert.IsType(t, &fsentry.Fifo{}, e)
	e, _ = s.Get("/dev/hello0")
	assert.IsType(t, &fsentry.Device{}, e)
	assert.True(t, s.Contains("/usr/share/doc/with space.txt"))
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"unknown tag":   "dir /usr\nblk /dev/sda\n",
		"short obj":     "obj /usr/bin/x 1234\n",
		"bad checksum":  "obj /usr/bin/x zzzz 1\n",
		"bad mtime":     "obj /usr/bin/x abcd later\n",
		"sym no arrow":  "sym /a b 1\n",
		"sym bad mtime": "sym /a -> b c\n",
		"bare dir":      "dir\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := contents.Parse(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrParse), err.Error())
		})
	}
}

func TestParseReportsLineNumber(t *testing.T) {
	_, err := contents.Parse(strings.NewReader("dir /a\n\nbogus /b\n"))
	require.Error(t, err)
	assert.Equal(t, 3, errors.GetErrorDetails(err)["line"])
}

func TestSerializeSortedAndRoundTrips(t *testing.T) {
	s := set(t,
		file(t, "/usr/bin/x", "x", fsentry.WithMtimeUnix(42)),
		dir(t, "/usr/bin"),
		dir(t, "/usr"),
	)
	link, err := fsentry.NewSymlink("/usr/bin/y", "x", fsentry.NonStrict(), fsentry.WithMtimeUnix(7))
	require.NoError(t, err)
	require.NoError(t, s.Add(link))
	fifo, err := fsentry.NewFifo("/run/p", fsentry.NonStrict())
	require.NoError(t, err)
	require.NoError(t, s.Add(fifo))

	data, err := contents.Serialize(s)
	require.NoError(t, err)
	sum, _ := chksum.SumBytes("md5", []byte("x"))
	assert.Equal(t, "fif /run/p\n"+
		"dir /usr\n"+
		"dir /usr/bin\n"+
		"obj /usr/bin/x "+chksum.Format(sum)+" 42\n"+
		"sym /usr/bin/y -> x 7\n", string(data))

	back, err := contents.ParseBytes(data)
	require.NoError(t, err)
	assert.True(t, s.Equal(back))
	e, _ := back.Get("/run/p")
	assert.IsType(t, &fsentry.Fifo{}, e)
}

func TestSerializeRejectsNewlines(t *testing.T) {
	s := set(t, dir(t, "/bad\nname"))
	_, err := contents.Serialize(s)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestParsedFileSurvivesRelocation(t *testing.T) {
	parsed, err := contents.ParseBytes([]byte("obj /usr/bin/foo d41d8cd98f00b204e9800998ecf8427e 100\n"))
	require.NoError(t, err)
	e, ok := parsed.Get("/usr/bin/foo")
	require.True(t, ok)

	moved := e.WithChanges(fsentry.WithLocation("/image/usr/bin/foo"))
	f, ok := moved.(*fsentry.File)
	require.True(t, ok)
	assert.True(t, f.HasChecksum("md5"))

	image := contents.New()
	require.NoError(t, image.Add(moved))
	data, err := contents.Serialize(image)
	require.NoError(t, err)
	assert.Equal(t, "obj /image/usr/bin/foo d41d8cd98f00b204e9800998ecf8427e 100\n", string(data))
}
