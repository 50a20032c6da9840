// Package importer pulls devices from the legacy mac_addresses.txt list,
// one "ID|Name<TAB>MAC" line per device, and keeps the registry in step
// when the file changes on disk.
package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"homeguard/backend/app/dto"
	"homeguard/backend/app/services"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const actor = "importer"

type Watcher struct {
	path     string
	registry *services.RegistryService
	toggle   *services.ToggleService
	log      zerolog.Logger
}

func New(path string, registry *services.RegistryService, toggle *services.ToggleService, log zerolog.Logger) *Watcher {
	return &Watcher{path: path, registry: registry, toggle: toggle, log: log}
}

// ImportOnce reads the file and adds any device whose MAC the registry does
// not know yet. Malformed lines are skipped with a warning, matching how
// the legacy dashboard treated its list.
func (w *Watcher) ImportOnce(ctx context.Context) (int, error) {
	content, err := os.ReadFile(w.path)
	if err != nil {
		return 0, err
	}

	existing, err := w.registry.List()
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		known[d.MAC] = struct{}{}
	}

	added := 0
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, mac, ok := parseLine(line)
		if !ok {
			w.log.Warn().Int("line", i+1).Msg("skipping malformed import line")
			continue
		}
		canonical, err := services.NormalizeMAC(mac)
		if err != nil {
			w.log.Warn().Int("line", i+1).Str("mac", mac).Msg("skipping invalid MAC")
			continue
		}
		if _, ok := known[canonical]; ok {
			continue
		}
		if _, err := w.registry.Add(actor, dto.DeviceCreateRequest{Name: name, MAC: canonical}); err != nil {
			w.log.Warn().Err(err).Int("line", i+1).Msg("import add failed")
			continue
		}
		known[canonical] = struct{}{}
		added++
	}

	if added > 0 {
		if _, err := w.toggle.Sync(ctx, actor); err != nil {
			w.log.Warn().Err(err).Msg("post-import sync failed")
		}
	}
	w.log.Info().Int("added", added).Str("path", w.path).Msg("legacy import finished")
	return added, nil
}

// Watch re-imports whenever the file is written or replaced. The parent
// directory is watched because editors rename over the original file.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, err := w.ImportOnce(ctx); err != nil {
				w.log.Warn().Err(err).Msg("re-import failed")
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// parseLine splits "ID|Name<TAB>MAC". The numeric ID is legacy noise and is
// dropped; a line without one still imports.
func parseLine(line string) (name, mac string, ok bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return "", "", false
	}
	name = parts[0]
	if idx := strings.IndexByte(name, '|'); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSpace(name)
	mac = strings.TrimSpace(parts[1])
	if name == "" || mac == "" {
		return "", "", false
	}
	return name, mac, true
}
