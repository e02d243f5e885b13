/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	"screenshotstudio/internal/config"
	"screenshotstudio/internal/crash"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/ui"
	"screenshotstudio/internal/version"
)

func usage() {
	fmt.Println("Screenshot Studio: marketing screenshot composer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  screenshotstudio version|-v|--version                     Show version")
	fmt.Println("  screenshotstudio presets                                  List device presets")
	fmt.Println("  screenshotstudio render <doc.json> -o out.png [flags]     Compose one panel")
	fmt.Println("  screenshotstudio template <tpl.json|id> <doc.json> -o out.png [flags]")
	fmt.Println("                                                            Compose one panel through a template")
	fmt.Println("  screenshotstudio templates                                List the configured template library")
	fmt.Println("  screenshotstudio batch <doc.json>... -o <dir> [flags]     Export a multi-panel set (png, zip, pdf)")
	fmt.Println("  screenshotstudio capture <url> -o shot.png [-device id]   Capture a web page sized for a mockup")
	fmt.Println("  screenshotstudio editor [<doc.json>]                      Launch desktop editor (build with -tags fyne)")
	fmt.Println()
	fmt.Println("Run a command with -h for its flags.")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	cfg, password, err := config.Load()
	if err != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	defer crash.Recover(crash.Scope{Dir: cfg.General.ExportDir, Command: args[1]})

	env := &cliEnv{cfg: cfg, password: password, log: l}
	var runErr error
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Screenshot Studio")
		fmt.Println(version.String())
		return
	case "presets":
		runErr = env.presets()
	case "render":
		runErr = env.render(args[2:])
	case "template":
		runErr = env.template(args[2:])
	case "templates":
		runErr = env.templates()
	case "batch":
		runErr = env.batch(args[2:])
	case "capture":
		runErr = env.capture(args[2:])
	case "editor", "ui":
		var path string
		if len(args) >= 3 {
			path = args[2]
		}
		runErr = ui.Run(path)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Println("unknown command:", args[1])
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		if ue, ok := runErr.(usageError); ok {
			fmt.Println(ue.msg)
			usage()
			os.Exit(2)
		}
		l.Error("command failed", slog.String("command", args[1]), slog.Any("err", runErr))
		fmt.Println("Error:", runErr)
		os.Exit(1)
	}
}
