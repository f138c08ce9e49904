// Package config gathers training options from defaults, an optional config
// file, CLSP_* environment variables and command line flags, in rising priority.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "CLSP"

// Config is every option of a training run
type Config struct {
	MonoTrain1 string `mapstructure:"mono-train1"`
	MonoTrain2 string `mapstructure:"mono-train2"`
	Lexicon1   string `mapstructure:"lexicon1"`
	Lexicon2   string `mapstructure:"lexicon2"`
	Output1    string `mapstructure:"output1"`
	Output2    string `mapstructure:"output2"`
	SaveVocab1 string `mapstructure:"save-vocab1"`
	SaveVocab2 string `mapstructure:"save-vocab2"`
	ReadVocab1 string `mapstructure:"read-vocab1"`
	ReadVocab2 string `mapstructure:"read-vocab2"`

	Sememe       string  `mapstructure:"sememe"`
	HowNet       string  `mapstructure:"hownet"`
	SaveSememe   string  `mapstructure:"save-sememe"`
	SememeLambda float64 `mapstructure:"sememe-lambda"`

	Size      int     `mapstructure:"size"`
	Window    int     `mapstructure:"window"`
	Sample    float64 `mapstructure:"sample"`
	Negative  int     `mapstructure:"negative"`
	Threads   int     `mapstructure:"threads"`
	MinCount  int64   `mapstructure:"min-count"`
	Alpha     float64 `mapstructure:"alpha"`
	CBOW      bool    `mapstructure:"cbow"`
	Binary    int     `mapstructure:"binary"`
	Epochs    int     `mapstructure:"epochs"`
	AdaGrad   bool    `mapstructure:"adagrad"`
	EarlyStop int64   `mapstructure:"early-stop"`
	DumpEvery int64   `mapstructure:"dump-every"`

	MatchingLambda  float64 `mapstructure:"matching-lambda"`
	LexiconLambda   float64 `mapstructure:"lexicon-lambda"`
	Threshold       float64 `mapstructure:"threshold"`
	MstepIterations int     `mapstructure:"mstep-iterations"`

	LearnVocabAndQuit bool  `mapstructure:"learn-vocab-and-quit"`
	VocabHashSize     int   `mapstructure:"vocab-hash-size"`
	TableSize         int   `mapstructure:"table-size"`
	Seed              int64 `mapstructure:"seed"`
	Debug             int   `mapstructure:"debug"`
}

type option struct {
	name  string
	def   any
	usage string
}

var options = []option{
	{"mono-train1", "", "monolingual training text for the source language"},
	{"mono-train2", "", "monolingual training text for the target language"},
	{"lexicon1", "", "seed lexicon, source side: one word per line"},
	{"lexicon2", "", "seed lexicon, target side: lines match lexicon1"},
	{"output1", "", "file for the source word vectors; a printf verb is replaced by the dump index"},
	{"output2", "", "file for the target word vectors; a printf verb is replaced by the dump index"},
	{"save-vocab1", "", "save the source vocabulary to this file"},
	{"save-vocab2", "", "save the target vocabulary to this file"},
	{"read-vocab1", "", "read the source vocabulary from this file instead of the corpus"},
	{"read-vocab2", "", "read the target vocabulary from this file instead of the corpus"},
	{"sememe", "", "sememe list, one per line"},
	{"hownet", "", "HowNet dictionary: a word then its sememes on each line"},
	{"save-sememe", "", "file for the resulting sememe vectors"},
	{"sememe-lambda", 1.0, "sememe term weight"},
	{"size", 100, "size of word vectors"},
	{"window", 5, "max skip length between words"},
	{"sample", 0.0, "down-sampling threshold for frequent words; 0 is off, useful value is 1e-5"},
	{"negative", 5, "number of negative examples"},
	{"threads", 1, "goroutines per training family"},
	{"min-count", int64(5), "discard words that appear less than this many times"},
	{"alpha", 0.025, "starting learning rate"},
	{"cbow", false, "use the continuous bag of words model instead of skip-gram"},
	{"binary", 0, "binary output; not supported"},
	{"epochs", 1, "number of training epochs"},
	{"adagrad", true, "AdaGrad adaptive learning rate"},
	{"early-stop", int64(0), "learn and train on the first N words only; 0 is off"},
	{"dump-every", int64(0), "save embeddings every N updates if N>0, else every epoch/|N| updates"},
	{"matching-lambda", 1.0, "matching term weight"},
	{"lexicon-lambda", 1.0, "lexicon term weight"},
	{"threshold", 0.0, "cosine a match must exceed"},
	{"mstep-iterations", 1, "updates per accepted match"},
	{"learn-vocab-and-quit", false, "learn and save the vocabularies, then exit"},
	{"vocab-hash-size", 30000000, "slots in each vocabulary hash index"},
	{"table-size", 100000000, "entries in each negative sampling table"},
	{"seed", int64(1), "seed for parameter initialisation"},
	{"debug", 2, "debug mode: 0 warnings, 1 info, 2 debug, 3 trace"},
}

// SetDefaults registers every option default with v
func SetDefaults(v *viper.Viper) {
	for _, o := range options {
		v.SetDefault(o.name, o.def)
	}
}

// AddFlags registers every option on fs with the same defaults
func AddFlags(fs *pflag.FlagSet) {
	for _, o := range options {
		switch d := o.def.(type) {
		case string:
			fs.String(o.name, d, o.usage)
		case int:
			fs.Int(o.name, d, o.usage)
		case int64:
			fs.Int64(o.name, d, o.usage)
		case float64:
			fs.Float64(o.name, d, o.usage)
		case bool:
			fs.Bool(o.name, d, o.usage)
		}
	}
}

// Load reads file (when set), the environment and fs (when not nil) into a Config
func Load(fs *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "cannot read config file %s", file)
		}
	}
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(err, "cannot bind flags")
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "cannot decode configuration")
	}
	return &c, nil
}

// Default is the configuration with nothing set
func Default() *Config {
	c, _ := Load(nil, "")
	return c
}

// Validate reports the first option that makes a training run impossible
func (c *Config) Validate() error {
	switch {
	case c.MonoTrain1 == "" || c.MonoTrain2 == "":
		return errors.New("both mono-train1 and mono-train2 are required")
	case c.Binary != 0:
		return errors.New("binary output is not supported")
	case c.Size <= 0:
		return errors.Errorf("size must be positive, got %d", c.Size)
	case c.Window <= 0:
		return errors.Errorf("window must be positive, got %d", c.Window)
	case c.Threads <= 0:
		return errors.Errorf("threads must be positive, got %d", c.Threads)
	case c.Negative < 1:
		return errors.Errorf("negative must be at least 1, got %d", c.Negative)
	case c.Sample < 0:
		return errors.Errorf("sample must not be negative, got %g", c.Sample)
	case c.MinCount < 0:
		return errors.Errorf("min-count must not be negative, got %d", c.MinCount)
	case c.EarlyStop < 0:
		return errors.Errorf("early-stop must not be negative, got %d", c.EarlyStop)
	case c.VocabHashSize <= 0 || c.TableSize <= 0:
		return errors.New("vocab-hash-size and table-size must be positive")
	case c.Lexicon1 == "" || c.Lexicon2 == "":
		return errors.New("both lexicon1 and lexicon2 are required")
	}
	if c.LearnVocabAndQuit {
		return nil
	}
	switch {
	case c.Output1 == "" || c.Output2 == "":
		return errors.New("no output name specified: output1 and output2 are required")
	case c.Sememe == "" || c.HowNet == "":
		return errors.New("both sememe and hownet are required")
	case c.SaveSememe == "":
		return errors.New("save-sememe is required")
	case c.Epochs <= 0:
		return errors.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.MstepIterations < 0:
		return errors.Errorf("mstep-iterations must not be negative, got %d", c.MstepIterations)
	case c.Alpha <= 0:
		return errors.Errorf("alpha must be positive, got %g", c.Alpha)
	}
	return nil
}

// EpochWords is the update budget of an epoch: twice the larger corpus, or
// early-stop when set
func (c *Config) EpochWords(maxTrainWords int64) int64 {
	if c.EarlyStop > 0 {
		return c.EarlyStop
	}
	return 2 * maxTrainWords
}
