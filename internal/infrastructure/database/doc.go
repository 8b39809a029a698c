// Package database provides SQLite connectivity for fontsoundd.
//
// It owns the connection (WAL mode, busy timeout, 0600 file permissions)
// and a small forward-only migration runner fed from an fs.FS, normally the
// embedded files of the migrations package.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Each file is applied in its own transaction.
package database
