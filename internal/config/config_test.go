package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bep/jfifmeta"
	qt "github.com/frankban/quicktest"
	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := Load(viper.New())
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, New())

	opts, err := cfg.DecodeOptions()
	c.Assert(err, qt.IsNil)
	c.Assert(opts.Mode, qt.Equals, jfifmeta.ModeCompatible)
	c.Assert(opts.MaxIFDDepth, qt.Equals, 16)
	c.Assert(opts.LimitNumTags, qt.Equals, uint32(5000))
}

func TestLoadEnv(t *testing.T) {
	c := qt.New(t)

	t.Setenv("JFIFMETA_MODE", "inline")
	t.Setenv("JFIFMETA_LIMIT_TAGS", "100")
	t.Setenv("JFIFMETA_S3_ENDPOINT", "localhost:9000")
	t.Setenv("JFIFMETA_S3_USE_SSL", "false")

	cfg, err := Load(viper.New())
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Mode, qt.Equals, "inline")
	c.Assert(cfg.LimitNumTags, qt.Equals, uint32(100))
	c.Assert(cfg.S3.Endpoint, qt.Equals, "localhost:9000")
	c.Assert(cfg.S3.UseSSL, qt.IsFalse)

	opts, err := cfg.DecodeOptions()
	c.Assert(err, qt.IsNil)
	c.Assert(opts.Mode, qt.Equals, jfifmeta.ModeInline)
}

func TestLoadConfigFile(t *testing.T) {
	c := qt.New(t)

	filename := filepath.Join(t.TempDir(), "jfifmeta.yaml")
	c.Assert(os.WriteFile(filename, []byte(`
format: json
jfif: true
max-depth: 4
s3:
  region: eu-north-1
  access-key: key
`), 0o644), qt.IsNil)

	v := viper.New()
	v.Set("config", filename)
	cfg, err := Load(v)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Format, qt.Equals, FormatJSON)
	c.Assert(cfg.ShowJFIF, qt.IsTrue)
	c.Assert(cfg.MaxIFDDepth, qt.Equals, 4)
	c.Assert(cfg.S3.Region, qt.Equals, "eu-north-1")
	c.Assert(cfg.S3.AccessKey, qt.Equals, "key")
	c.Assert(cfg.S3.UseSSL, qt.IsTrue)

	v = viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load(v)
	c.Assert(err, qt.ErrorMatches, "failed to read config file .*")
}

func TestLoadZeroMaxDepth(t *testing.T) {
	c := qt.New(t)

	v := viper.New()
	v.Set("max-depth", 0)
	cfg, err := Load(v)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.MaxIFDDepth, qt.Equals, 0)

	opts, err := cfg.DecodeOptions()
	c.Assert(err, qt.IsNil)

	// A cycle back to IFD0 still stops at the default depth.
	block := []byte("II*\x00\x08\x00\x00\x00" +
		"\x01\x00" +
		"\x69\x87\x04\x00\x01\x00\x00\x00\x08\x00\x00\x00" +
		"\x00\x00\x00\x00")
	_, err = jfifmeta.DecodeEXIF(block, opts)
	c.Assert(err, qt.ErrorIs, jfifmeta.ErrMaxDepth)
	c.Assert(err, qt.ErrorMatches, ".*17 levels deep.*")
}

func TestValidate(t *testing.T) {
	c := qt.New(t)

	for _, test := range []struct {
		name string
		key  string
		val  any
		err  string
	}{
		{"mode", "mode", "strict", `unknown decode mode "strict"`},
		{"format", "format", "xml", `unknown output format "xml"`},
		{"log level", "log-level", "loud", `unknown log level "loud"`},
		{"depth", "max-depth", -1, `max-depth must not be negative \(0 means default\), got -1`},
	} {
		c.Run(test.name, func(c *qt.C) {
			v := viper.New()
			v.Set(test.key, test.val)
			_, err := Load(v)
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}
