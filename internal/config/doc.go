// Package config provides runtime configuration for lux.
//
// The configuration is stored in lux.json, lux.yaml or lux.yml. This
// package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	reconcile:
//	  brute_force_threshold: 4
//	  static_fast_path: true
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  namespace: lux
//	tracing:
//	  enabled: false
//	  tracer_name: lux
//	serve:
//	  addr: localhost:3000
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Serve.Addr)
package config
