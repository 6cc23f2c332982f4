package main

import (
	"flag"
	"log"

	"github.com/riftline/league_anm_browser/batch"
	"github.com/riftline/league_anm_browser/config"
	"github.com/riftline/league_anm_browser/skeleton"
	"github.com/riftline/league_anm_browser/web"
)

func main() {
	var addr, cfgPath, anmDir, sklPath, encoding, exportDir string
	var scale float64
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&cfgPath, "cfg", "", "Path to yaml tool config")
	flag.StringVar(&anmDir, "anm", "", "Path to folder with animation files")
	flag.StringVar(&sklPath, "skl", "", "Path to skeleton json")
	flag.Float64Var(&scale, "scale", 0, "Import scale override (0 - keep)")
	flag.StringVar(&encoding, "encoding", "", "Text encoding override for legacy bone names")
	flag.StringVar(&exportDir, "exportdir", "", "Re-encode library into this folder and exit")
	flag.Parse()

	if cfgPath != "" {
		cfg, err := config.LoadToolConfig(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		if anmDir == "" {
			anmDir = cfg.AnimationsDir
		}
		if sklPath == "" {
			sklPath = cfg.SkeletonPath
		}
		if cfg.ListenAddr != "" && addr == ":8000" {
			addr = cfg.ListenAddr
		}
	}
	if scale != 0 {
		config.SetImportScale(float32(scale))
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	if anmDir == "" || sklPath == "" {
		flag.PrintDefaults()
		return
	}

	skl, err := skeleton.LoadFile(sklPath)
	if err != nil {
		log.Fatal(err)
	}

	lib, err := batch.LoadAll(anmDir, func(done, total int, name string) {
		log.Printf("[batch] %d/%d %s", done, total, name)
	})
	if err != nil {
		log.Fatal(err)
	}

	if exportDir != "" {
		if err := batch.ExportAll(lib, exportDir, nil); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := web.StartServer(addr, lib, skl, "web"); err != nil {
		log.Fatal(err)
	}
}
