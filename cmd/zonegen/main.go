package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/annel0/zone-streamer/internal/devdata"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/vfs"
)

func main() {
	var (
		outDir = flag.String("out", "", "каталог, куда пишутся файлы зон")
		pack   = flag.String("pack", "", "badger-архив, куда пишутся файлы зон")
		seed   = flag.Int64("seed", 1, "seed генератора рельефа и размещений")
		zones  = flag.String("zones", "", "id зон через запятую (по умолчанию все)")
	)
	flag.Parse()

	if (*outDir == "") == (*pack == "") {
		fmt.Fprintln(os.Stderr, "❌ Укажите ровно один из флагов -out или -pack")
		flag.Usage()
		os.Exit(2)
	}

	specs, err := selectZones(*zones)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	var w vfs.Writer
	if *pack != "" {
		p, err := vfs.OpenPack(*pack)
		if err != nil {
			log.Fatalf("❌ Не удалось открыть архив: %v", err)
		}
		defer p.Close()
		w = p
	} else {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("❌ Не удалось создать каталог: %v", err)
		}
		d, err := vfs.NewDirRepository(*outDir)
		if err != nil {
			log.Fatalf("❌ Не удалось открыть каталог: %v", err)
		}
		w = d
	}

	start := time.Now()
	summary, err := devdata.Generate(context.Background(), w, devdata.Options{Seed: *seed, Zones: specs})
	if err != nil {
		log.Fatalf("❌ Генерация не удалась: %v", err)
	}

	logging.Info("✅ Сгенерировано за %s: %d зон, %d блоков, %d размещений, %d файлов",
		time.Since(start).Round(time.Millisecond), summary.Zones, summary.Blocks, summary.Placements, summary.Files)
}

// selectZones оставляет из стандартного набора зоны с перечисленными id
func selectZones(ids string) ([]devdata.ZoneSpec, error) {
	all := devdata.DefaultZones()
	if strings.TrimSpace(ids) == "" {
		return all, nil
	}

	var out []devdata.ZoneSpec
	for _, part := range strings.Split(ids, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("неверный id зоны %q", part)
		}
		found := false
		for _, spec := range all {
			if spec.ID == id {
				out = append(out, spec)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("зона %d отсутствует в наборе", id)
		}
	}
	return out, nil
}
