// Package loader reads the raw recipe datasets and persists processed tables.
//
// Raw files are read without any type inference: every non-empty CSV field
// becomes a string cell and every empty field an absent cell. Files are
// decoded as UTF-8 and, when that fails, re-decoded as Latin-1. Processed
// tables are stored as xlsx workbooks with a hidden schema sheet so that
// column types, list cells and timestamps survive a save/load round trip.
//
// # Usage
//
//	l := loader.New(paths, logger)
//	ds, err := l.LoadAll(ctx)
//	if err != nil {
//	    return err
//	}
//	if err := loader.ValidateTable(ds.Recipes, domain.RecipeColumns()); err != nil {
//	    return err
//	}
//
// Missing files are reported as *errors.AppError of type NOT_FOUND whose
// context lists the files that are available.
package loader
