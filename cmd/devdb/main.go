// main.go
//
// Session-authenticated data service for the Runway AI pageant training application
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of runway.
// runway is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// runway is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with runway.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/localnerve/runway/internal/devdb"
	"github.com/localnerve/runway/internal/logging"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var image string
	flag.StringVar(&image, "image", devdb.DefaultImage, "MariaDB image to run")
	var envFilename string
	flag.StringVar(&envFilename, "o", "", "write the DB_* variables to this .env file")
	flag.Parse()

	usage := `
Run a throwaway MariaDB for local development. The container is removed on exit.

Usage:

devdb [-h] [-image IMAGE] [-o ENV_FILE_PATH]

ENV_FILE_PATH: .env file to write the connection variables to

example
  devdb -o .env.local
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	log := logging.New("info", "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	db, err := devdb.StartMariaDB(ctx, image)
	if err != nil {
		log.WithError(err).Fatal("Failed to start database container")
	}
	log.WithField("host", db.Host).WithField("port", db.Port).Info("MariaDB is ready")

	env := db.Env()
	if envFilename != "" {
		if err := godotenv.Write(env, envFilename); err != nil {
			log.WithError(err).Error("Failed to write environment file")
		} else {
			log.WithField("file", envFilename).Info("Wrote connection variables")
		}
	} else {
		out, _ := godotenv.Marshal(env)
		fmt.Println(out)
	}

	<-ctx.Done()
	log.Info("Terminating database container...")

	termCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Terminate(termCtx); err != nil {
		log.WithError(err).Error("Failed to terminate container")
		os.Exit(1)
	}
}
