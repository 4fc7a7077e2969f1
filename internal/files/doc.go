// Package files provides file system discovery and safe writes for the
// EDA toolkit.
//
// Discovery lists the CSV files, workbooks or arbitrary glob matches in a
// directory. The loader uses it to tell the user which files are available
// when a requested one does not exist.
//
// Manager resolves short project paths such as "processed/recipes.xlsx"
// against config.Paths, and WriteAtomic writes through a temporary file so
// that exports and charts are never left half written.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.Root)
//	csvs, err := discovery.FindCSVFiles("data/raw")
//
//	manager := files.NewManager(paths, logger)
//	path := manager.ResolveUnder("summary.csv", paths.ReportsDir)
//	err = files.WriteAtomic(path, func(w io.Writer) error {
//	    return write(w)
//	})
package files
