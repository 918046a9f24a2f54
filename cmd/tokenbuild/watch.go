package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const rebuildDebounce = 250 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild artifacts whenever an input file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(flagConfig)
		if err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the directories of every input so editors that rename on
		// save still trigger.
		watched := map[string]bool{}
		for _, path := range inputPaths(config) {
			dir := filepath.Dir(path)
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %q: %w", dir, err)
			}
			watched[dir] = true
		}

		if err := runBuild(config); err != nil {
			logger.Errorf("initial build failed: %v", err)
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		inputs := inputSet(config)
		var pending *time.Timer
		rebuild := make(chan struct{}, 1)

		logger.Infof("watching %d directories, ctrl-c to stop", len(watched))
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !inputs[filepath.Clean(event.Name)] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Debounce: editors fire bursts of events per save.
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(rebuildDebounce, func() {
					select {
					case rebuild <- struct{}{}:
					default:
					}
				})
			case <-rebuild:
				logger.Infof("change detected, rebuilding")
				fresh, err := LoadConfig(flagConfig)
				if err != nil {
					logger.Errorf("reload config failed: %v", err)
					continue
				}
				if err := runBuild(fresh); err != nil {
					logger.Errorf("rebuild failed: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warnf("watcher error: %v", err)
			case <-stop:
				logger.Infof("stopping")
				return nil
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVarP(&flagConfig, "config", "c", "tokens.yaml", "build manifest")
	rootCmd.AddCommand(watchCmd)
}

func inputPaths(config *BuildConfig) []string {
	paths := []string{flagConfig, config.Base}
	for _, path := range config.Themes {
		paths = append(paths, path)
	}
	return paths
}

func inputSet(config *BuildConfig) map[string]bool {
	set := map[string]bool{}
	for _, path := range inputPaths(config) {
		set[filepath.Clean(path)] = true
	}
	return set
}
