// Package config provides configuration parsing for livetree projects.
//
// The configuration is stored in livetree.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "reactive": {
//	    "maxFlushRounds": 100,
//	    "captureStacks": true
//	  },
//	  "reconcile": {
//	    "propertyMirrors": ["value", "checked", "selected", "indeterminate"]
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "livetree"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "livetree",
//	    "stdout": false
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Max rounds:", cfg.Reactive.MaxFlushRounds)
package config
