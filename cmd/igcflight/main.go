package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	kitlog "github.com/go-kit/kit/log"

	"igcflight/flight"
)

const defaultUnset = "~~unset~~"

var (
	file       string
	dir        string
	configPath string
	workers    int
	verbose    bool
	summary    bool
)

func init() {
	flag.StringVar(&file, "file", defaultUnset, "IGC file to reconstruct and segment")
	flag.StringVar(&dir, "dir", defaultUnset, "directory of .igc files to process concurrently")
	flag.StringVar(&configPath, "config", "", "optional flight engine config file (TOML/YAML/JSON)")
	flag.IntVar(&workers, "workers", 4, "number of concurrent workers for -dir mode")
	flag.BoolVar(&verbose, "verbose", false, "log every engine note as it is produced")
	flag.BoolVar(&summary, "summary", false, "print only the first and last fix per flight")
}

func main() {
	flag.Parse()

	if file == defaultUnset && dir == defaultUnset {
		log.Fatal("either -file or -dir must be provided")
	}

	cfg, err := flight.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("loading config: %s", err)
	}

	var logger kitlog.Logger
	if verbose {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}

	if file != defaultUnset {
		processOne(file, cfg, logger)
		return
	}

	processDir(dir, cfg, logger)
}

func processOne(path string, cfg flight.Config, logger kitlog.Logger) {
	fl, err := flight.CreateFromFile(path, cfg, logger)
	if err != nil {
		log.Fatalf("%s: %s", path, err)
	}
	printFlightSummary(fl, summary)
}

// processDir walks dir for .igc files and runs the engine over each one
// in a bounded pool of workers, in the streaming producer/consumer style
// the teacher uses for its mission-state export pipeline.
func processDir(dir string, cfg flight.Config, logger kitlog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("reading %s: %s", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".igc") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	jobs := make(chan string, len(paths))
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	results := make(chan *flight.Flight, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				fl, err := flight.CreateFromFile(path, cfg, logger)
				if err != nil {
					log.Printf("%s: %s", path, err)
					continue
				}
				results <- fl
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for fl := range results {
		printFlightSummary(fl, summary)
		log.Println(strings.Repeat("-", 40))
	}
}
