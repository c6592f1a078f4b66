// Package config provides loading and environment overlay for sink
// configuration. It exposes a Default() baseline, Load() for JSON or YAML
// files, and FromEnv() to overlay TABLESINK_* variables.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/tablesink.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	s, _ := sink.New(sink.FromConfig(cfg))
//	defer s.Close()
package config
