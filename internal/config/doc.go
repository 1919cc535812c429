// Package config loads ducks.json, the configuration read by the ducks
// command.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":4000",
//	    "devtools": true,
//	    "metrics": true
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "resources": [
//	    {
//	      "name": "widget",
//	      "url": "http://localhost:4000/widgets",
//	      "headers": {"Content-Type": "application/json"},
//	      "transport": "http",
//	      "seed": [{"id": 1, "name": "first"}]
//	    },
//	    {
//	      "name": "gadget",
//	      "transport": "s3",
//	      "deleteMode": "compat"
//	    }
//	  ],
//	  "s3": {
//	    "bucket": "ducks",
//	    "prefix": "data/",
//	    "region": "us-east-1",
//	    "endpoint": "http://localhost:9000",
//	    "usePathStyle": true
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
