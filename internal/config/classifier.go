package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ClassifierConfig lists the keywords that mark an order description as a
// service rather than a weighed product.
type ClassifierConfig struct {
	ServiceKeywords []string `mapstructure:"serviceKeywords"`
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		ServiceKeywords: []string{
			// services
			"livraison", "installation", "réparation", "reparation", "maintenance",
			"dépannage", "depannage", "montage", "configuration", "formation",
			"nettoyage", "transport", "course", "coursier", "prestation", "service",
			"abonnement", "consultation", "location", "envoi", "expédition", "expedition",
			// electronics sold per unit
			"samsung", "iphone", "apple", "tecno", "infinix", "itel", "huawei", "xiaomi",
			"oppo", "nokia", "lenovo", "dell", "hp", "asus", "acer", "sony", "lg",
			"téléphone", "telephone", "ordinateur", "laptop", "tablette", "télévision", "television",
		},
	}
}

type ClassifierConfigHolder struct {
	current atomic.Value // holds ClassifierConfig
}

// NewStaticClassifierConfigHolder returns a holder that never reloads.
func NewStaticClassifierConfigHolder(cfg ClassifierConfig) *ClassifierConfigHolder {
	holder := &ClassifierConfigHolder{}
	holder.current.Store(normalizeClassifierConfig(cfg))
	return holder
}

func NewClassifierConfigHolder(log *zap.Logger) (*ClassifierConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("classifier.config")

	v := viper.New()

	v.SetConfigName("classifier")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/colis/config")
	v.AddConfigPath("/etc/colis")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COLIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
		v.SetDefault("classifier.serviceKeywords", DefaultClassifierConfig().ServiceKeywords)
	}

	var cfg ClassifierConfig
	if err := v.UnmarshalKey("classifier", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizeClassifierConfig(cfg)
	if err := validateClassifierConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ClassifierConfigHolder{}
	holder.current.Store(cfg)

	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ClassifierConfig
		if err := v.UnmarshalKey("classifier", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		updated = normalizeClassifierConfig(updated)
		if err := validateClassifierConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name), zap.Int("keywords", len(updated.ServiceKeywords)))
	})

	return holder, nil
}

func (h *ClassifierConfigHolder) Get() ClassifierConfig {
	return h.current.Load().(ClassifierConfig)
}

// ServiceKeywords returns the active keyword list.
func (h *ClassifierConfigHolder) ServiceKeywords() []string {
	if h == nil {
		return DefaultClassifierConfig().ServiceKeywords
	}
	return h.Get().ServiceKeywords
}

func normalizeClassifierConfig(cfg ClassifierConfig) ClassifierConfig {
	seen := make(map[string]struct{}, len(cfg.ServiceKeywords))
	out := make([]string, 0, len(cfg.ServiceKeywords))
	for _, kw := range cfg.ServiceKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return ClassifierConfig{ServiceKeywords: out}
}

func validateClassifierConfig(cfg ClassifierConfig) error {
	if len(cfg.ServiceKeywords) == 0 {
		return errors.New("classifier.serviceKeywords cannot be empty")
	}
	return nil
}
