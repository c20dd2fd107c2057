package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aisgo/posibel/app"
)

func main() {
	dir := flag.String("config", "configs", "directory containing the config file")
	name := flag.String("name", "config", "config file name without extension")
	flag.Parse()

	cfg, err := app.Load(*dir, *name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fxApp, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// 阻塞直到 SIGINT / SIGTERM，然后按逆序执行 OnStop
	fxApp.Run()
}
