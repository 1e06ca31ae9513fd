package lifecycle

// Notifier receives file lifecycle events, the way an editor reports them
type Notifier interface {
	FileOpened(path string)
	FileSaved(path string)
	FileActivated(path string)
	FileClosed(path string)
}
