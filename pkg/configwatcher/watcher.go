package configwatcher

import (
	"context"
	"path/filepath"
	"time"

	"prepace_backend/internal/config"
	"prepace_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader 配置重新加载成功后调用
type Reloader func(cfg *config.Config)

const debounce = time.Second

// Watch 监听配置目录，config.yaml 变化后防抖重载。
// 监听目录而不是文件本身：编辑器保存时常常是先写临时文件再 rename
func Watch(ctx context.Context, configDir string, reloaders ...Reloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	absDir, err := filepath.Abs(configDir)
	if err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isConfigFile(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(debounce)
			case <-timer.C:
				newCfg, err := config.LoadConfig(absDir)
				if err != nil {
					logger.Log.Error("Failed to reload config", zap.Error(err))
					continue
				}
				logger.Log.Info("config reloaded", zap.String("dir", absDir))
				for _, reload := range reloaders {
					reload(newCfg)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Error("Config watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func isConfigFile(name string) bool {
	base := filepath.Base(name)
	return base == "config.yaml" || base == "config.yml"
}
