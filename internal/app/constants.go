package app

import "fmt"

const (
	errFailedLoadConfigFmt          = "failed to load config: %w"
	errFailedConnectDatabaseFmt     = "failed to connect to database: %w"
	errFailedCreateStorageClientFmt = "failed to create storage client: %w"
)

func errFailedLoadConfig(err error) error {
	return fmt.Errorf(errFailedLoadConfigFmt, err)
}

func errFailedConnectDatabase(err error) error {
	return fmt.Errorf(errFailedConnectDatabaseFmt, err)
}

func errFailedCreateStorageClient(err error) error {
	return fmt.Errorf(errFailedCreateStorageClientFmt, err)
}
