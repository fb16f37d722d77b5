package imagemeta

// SaveOption configures Write and SaveAs.
//
// Example:
//
//	err := doc.Write(
//	    imagemeta.WithBackup(".bak"),
//	    imagemeta.WithValidation(),
//	)
type SaveOption func(*saveOptions)

type saveOptions struct {
	backupSuffix    string // Suffix for backup file (e.g., ".bak")
	validate        bool   // Re-read after write to verify
	preserveModTime bool   // Keep original modification time
}

// defaultSaveOptions starts from the write defaults installed by Init.
func defaultSaveOptions() *saveOptions {
	s := state()
	return &saveOptions{
		backupSuffix:    s.backupSuffix,
		validate:        s.validate,
		preserveModTime: s.preserveModTime,
	}
}

// WithBackup keeps the previous file next to the written one.
//
// WithBackup(".bak") renames "photo.jpg" to "photo.jpg.bak" before the new
// file takes its place. An existing backup is overwritten. An empty suffix
// disables the backup.
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-reads the written file and checks that its key sets
// match the document.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime keeps the modification time of the file being
// replaced.
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}
