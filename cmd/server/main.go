package main

import (
	"context"
	"flag"

	"github.com/golang/glog"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/server"
)

// @title           Taskboard API
// @version         1.0
// @description     Personal task lists behind a pluggable identity provider, with a role-gated admin view.

// @contact.name   Taskboard maintainers

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @schemes http
func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load()
	if err != nil {
		glog.Exitf("❌ Invalid configuration: %v", err)
	}

	s, err := server.Init(context.Background(), cfg)
	if err != nil {
		glog.Exitf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
