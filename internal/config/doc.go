// Package config loads dilithium.json, the CLI configuration file.
//
// The file sits in the working directory or any parent. Every field is
// optional; missing values take the defaults returned by New.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "dilithium"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "dilithium"
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "stepInterval": "500ms"
//	  },
//	  "snapshot": {
//	    "dir": "snapshots",
//	    "format": "html",
//	    "s3": {
//	      "bucket": "render-snapshots",
//	      "prefix": "ci/",
//	      "region": "us-east-1"
//	    }
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
