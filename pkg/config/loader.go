package config

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

const (
	// EnvPrefix prefixes every environment override
	EnvPrefix = "PACKWEAVER_"
	// ConfigFileName is looked up in the content root
	ConfigFileName = "packweaver.toml"
)

// LoadOptions selects optional configuration sources
type LoadOptions struct {
	// ConfigFile is an explicit settings file; it must exist when set.
	ConfigFile string
	// ContentRoot overrides content_root from every other source.
	ContentRoot string
	// FS reads settings files; the OS filesystem when nil.
	FS afero.Fs
}

// Load builds Settings from defaults, an optional file and the environment
func Load(opts LoadOptions) (*Settings, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	// The environment may move the content root, which decides where the
	// settings file is looked up.
	if err := applyOverrides(k, opts); err != nil {
		return nil, err
	}

	configPath := opts.ConfigFile
	if configPath == "" {
		candidate := filepath.Join(k.String("content_root"), ConfigFileName)
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot stat %s", candidate)
		}
		if exists {
			configPath = candidate
		}
	}

	if configPath != "" {
		data, err := afero.ReadFile(fs, configPath)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", configPath)
		}
		if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", configPath)
		}
		logger.Debug().Str("path", configPath).Msg("Loaded settings file")
		if err := applyOverrides(k, opts); err != nil {
			return nil, err
		}
	}

	implicitRoot := k.String("content_root") == "" || k.String("content_root") == "."

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}

	if err := postProcess(&s); err != nil {
		return nil, err
	}
	if implicitRoot {
		logger.Debug().Str("contentRoot", s.ContentRoot).Msg("No content root configured, using the working directory")
	}

	logger.Debug().
		Str("contentRoot", s.ContentRoot).
		Str("workDir", s.WorkDir).
		Strs("contentTypes", s.ContentTypeNames()).
		Msg("Settings loaded")

	return &s, nil
}

// applyOverrides layers the environment and then the explicit content root
// over what k already holds.
func applyOverrides(k *koanf.Koanf, opts LoadOptions) error {
	if err := loadEnv(k); err != nil {
		return err
	}
	if opts.ContentRoot != "" {
		if err := k.Set("content_root", opts.ContentRoot); err != nil {
			return errors.Wrap(err, errors.ErrConfigLoad, "cannot set content root")
		}
	}
	return nil
}

func loadEnv(k *koanf.Koanf) error {
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}
	return nil
}

// envKey maps PACKWEAVER_ENGINE__COMPANION_THRESHOLD to
// engine.companion_threshold.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
