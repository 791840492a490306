package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/logger"
)

func main() {
	var rotationPath string
	flag.StringVar(&rotationPath, "rotation", "configs/rotations/frost.yaml", "Path to rotation YAML")
	flag.Parse()

	logger.Init()

	rotationPath = filepath.Clean(rotationPath)
	file, err := apl.LoadRotation(filepath.Dir(rotationPath), filepath.Base(rotationPath))
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load rotation")
	}

	rot, err := apl.Compile(file)
	if err != nil {
		logger.Log.WithError(err).WithField("rotation", rotationPath).Fatal("rotation invalid")
	}

	entries := 0
	for _, l := range rot.Lists {
		entries += len(l.Actions)
	}
	logger.Log.WithFields(logrus.Fields{"lists": len(rot.Lists), "entries": entries}).Debug("compiled")
	fmt.Printf("Rotation '%s' validated successfully (source: %s)\n", file.Name, rotationPath)
}
