package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bep/jfifmeta/internal/config"
	qt "github.com/frankban/quicktest"
)

type fakeGetter struct {
	objects map[string]string
	calls   []string
}

func (g *fakeGetter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	g.calls = append(g.calls, bucket+"/"+key)
	s, ok := g.objects[bucket+"/"+key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

func TestOpen(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	c.Run("Local file", func(c *qt.C) {
		filename := filepath.Join(c.TempDir(), "a.jpg")
		c.Assert(os.WriteFile(filename, []byte("\xff\xd8\xff\xd9"), 0o644), qt.IsNil)

		r, err := Opener{}.Open(ctx, filename)
		c.Assert(err, qt.IsNil)
		defer r.Close()
		b, err := io.ReadAll(r)
		c.Assert(err, qt.IsNil)
		c.Assert(b, qt.DeepEquals, []byte("\xff\xd8\xff\xd9"))
	})

	c.Run("Missing local file", func(c *qt.C) {
		_, err := Opener{}.Open(ctx, filepath.Join(c.TempDir(), "missing.jpg"))
		c.Assert(err, qt.ErrorIs, os.ErrNotExist)
	})

	c.Run("S3", func(c *qt.C) {
		g := &fakeGetter{objects: map[string]string{"photos/2024/a.jpg": "jpeg"}}
		r, err := Opener{S3: g}.Open(ctx, "s3://photos/2024/a.jpg")
		c.Assert(err, qt.IsNil)
		defer r.Close()
		b, err := io.ReadAll(r)
		c.Assert(err, qt.IsNil)
		c.Assert(string(b), qt.Equals, "jpeg")
		c.Assert(g.calls, qt.DeepEquals, []string{"photos/2024/a.jpg"})

		_, err = Opener{S3: g}.Open(ctx, "s3://photos/b.jpg")
		c.Assert(err, qt.ErrorIs, os.ErrNotExist)
	})

	c.Run("S3 not configured", func(c *qt.C) {
		_, err := Opener{}.Open(ctx, "s3://photos/a.jpg")
		c.Assert(err, qt.ErrorIs, ErrS3NotConfigured)
	})
}

func TestParseS3Name(t *testing.T) {
	c := qt.New(t)

	bucket, key, err := ParseS3Name("s3://photos/2024/a.jpg")
	c.Assert(err, qt.IsNil)
	c.Assert(bucket, qt.Equals, "photos")
	c.Assert(key, qt.Equals, "2024/a.jpg")

	for _, name := range []string{"s3://", "s3://photos", "s3://photos/", "s3:///a.jpg"} {
		_, _, err := ParseS3Name(name)
		c.Assert(err, qt.ErrorMatches, "invalid S3 name .*", qt.Commentf("%s", name))
	}
}

func TestNewMinioGetter(t *testing.T) {
	c := qt.New(t)

	_, err := NewMinioGetter(config.S3Config{})
	c.Assert(err, qt.ErrorIs, ErrS3NotConfigured)

	g, err := NewMinioGetter(config.S3Config{Endpoint: "http://localhost:9000", Region: "us-east-1"})
	c.Assert(err, qt.IsNil)
	c.Assert(g.client.EndpointURL().Host, qt.Equals, "localhost:9000")
}
