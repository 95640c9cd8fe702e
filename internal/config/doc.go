// Package config loads the dsstool configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file: DSS_CONFIG_FILE, else config.yaml or configs/config.yaml
//	3. Default values from the struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DSS_<SECTION>_<FIELD>:
//
//	DSS_SERVER_PORT=8080
//	DSS_LOGGING_LEVEL=debug
//	DSS_PIPELINE_WORKSHEET="5G Info"
//	DSS_TEMPLATES_DIR=/srv/dss/templates
//	DSS_TEMPLATES_VARIANT=single
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	opts := cfg.PipelineOptions()
package config
