// Command kernel-sync refreshes the local kernel cache from the remote
// archive: it discovers the latest filename for date-versioned kernels and
// downloads anything missing or outdated. Run it ahead of starting the
// server in preloaded mode to avoid a slow first bootstrap.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/signalsfoundry/space-query/internal/logging"
	"github.com/signalsfoundry/space-query/kernel"
)

func main() {
	dir := flag.String("dir", "kernels", "Local kernel cache directory")
	archiveURL := flag.String("archive", kernel.DefaultArchiveURL, "Base URL of the kernel archive")
	force := flag.Bool("force", false, "Re-download kernels even when present locally")
	timeout := flag.Duration("timeout", 30*time.Minute, "Overall sync deadline")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cat := kernel.DefaultCatalog()
	arc := kernel.NewArchive(*archiveURL, *dir, nil)

	results, err := kernel.Sync(ctx, cat, arc, *force)
	for _, res := range results {
		status := "cached"
		if res.Updated {
			status = "fetched"
		}
		fmt.Printf("%-24s %-40s %s\n", res.Key, res.File, status)
	}
	if err != nil {
		log.Error(ctx, "kernel sync failed", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "kernel cache up to date",
		logging.String("dir", *dir), logging.Int("kernels", len(results)))
}
