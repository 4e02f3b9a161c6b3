package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	constraintFilesSlug       = "files_slug_key"
	constraintFilesStorageKey = "files_storage_key_key"

	errUserNotFound   = "user not found"
	errFolderNotFound = "folder not found"
	errFileNotFound   = "file not found"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedStartTransactionFmt  = "failed to start transaction: %w"
	errFailedCommitTransactionFmt = "failed to commit transaction: %w"

	errFailedCreateUserFmt = "failed to create user: %w"
	errFailedGetUserFmt    = "failed to get user: %w"
	errFailedListUsersFmt  = "failed to list users: %w"
	errFailedScanUserFmt   = "failed to scan user: %w"
	errFailedCountUsersFmt = "failed to count users: %w"
	errFailedUpdateUserFmt = "failed to update user: %w"
	errFailedDeleteUserFmt = "failed to delete user: %w"

	errFailedCreateFolderFmt   = "failed to create folder: %w"
	errFailedGetFolderFmt      = "failed to get folder: %w"
	errFailedListFoldersFmt    = "failed to list folders: %w"
	errFailedScanFolderFmt     = "failed to scan folder: %w"
	errFailedUpdateFolderFmt   = "failed to update folder: %w"
	errFailedDeleteFoldersFmt  = "failed to delete folders: %w"
	errFailedCollectSubtreeFmt = "failed to collect folder subtree: %w"
	errFailedCheckChildrenFmt  = "failed to check folder children: %w"

	errFailedCreateFileFmt = "failed to create file: %w"
	errFailedGetFileFmt    = "failed to get file: %w"
	errFailedListFilesFmt  = "failed to list files: %w"
	errFailedScanFileFmt   = "failed to scan file: %w"
	errFailedCountFilesFmt = "failed to count files: %w"
	errFailedUpdateFileFmt = "failed to update file: %w"
	errFailedDeleteFileFmt = "failed to delete file: %w"
)

func errFailedParseDatabaseConfig(err error) error {
	return fmt.Errorf(errFailedParseDatabaseConfigFmt, err)
}

func errFailedCreateConnectionPool(err error) error {
	return fmt.Errorf(errFailedCreateConnectionPoolFmt, err)
}

func errFailedPingDatabase(err error) error {
	return fmt.Errorf(errFailedPingDatabaseFmt, err)
}

func errFailedStartTransaction(err error) error {
	return fmt.Errorf(errFailedStartTransactionFmt, err)
}

func errFailedCommitTransaction(err error) error {
	return fmt.Errorf(errFailedCommitTransactionFmt, err)
}

func errFailedCreateUser(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
func errFailedGetUser(err error) error    { return fmt.Errorf(errFailedGetUserFmt, err) }
func errFailedListUsers(err error) error  { return fmt.Errorf(errFailedListUsersFmt, err) }
func errFailedScanUser(err error) error   { return fmt.Errorf(errFailedScanUserFmt, err) }
func errFailedCountUsers(err error) error { return fmt.Errorf(errFailedCountUsersFmt, err) }
func errFailedUpdateUser(err error) error { return fmt.Errorf(errFailedUpdateUserFmt, err) }
func errFailedDeleteUser(err error) error { return fmt.Errorf(errFailedDeleteUserFmt, err) }

func errFailedCreateFolder(err error) error   { return fmt.Errorf(errFailedCreateFolderFmt, err) }
func errFailedGetFolder(err error) error      { return fmt.Errorf(errFailedGetFolderFmt, err) }
func errFailedListFolders(err error) error    { return fmt.Errorf(errFailedListFoldersFmt, err) }
func errFailedScanFolder(err error) error     { return fmt.Errorf(errFailedScanFolderFmt, err) }
func errFailedUpdateFolder(err error) error   { return fmt.Errorf(errFailedUpdateFolderFmt, err) }
func errFailedDeleteFolders(err error) error  { return fmt.Errorf(errFailedDeleteFoldersFmt, err) }
func errFailedCollectSubtree(err error) error { return fmt.Errorf(errFailedCollectSubtreeFmt, err) }
func errFailedCheckChildren(err error) error  { return fmt.Errorf(errFailedCheckChildrenFmt, err) }

func errFailedCreateFile(err error) error { return fmt.Errorf(errFailedCreateFileFmt, err) }
func errFailedGetFile(err error) error    { return fmt.Errorf(errFailedGetFileFmt, err) }
func errFailedListFiles(err error) error  { return fmt.Errorf(errFailedListFilesFmt, err) }
func errFailedScanFile(err error) error   { return fmt.Errorf(errFailedScanFileFmt, err) }
func errFailedCountFiles(err error) error { return fmt.Errorf(errFailedCountFilesFmt, err) }
func errFailedUpdateFile(err error) error { return fmt.Errorf(errFailedUpdateFileFmt, err) }
func errFailedDeleteFile(err error) error { return fmt.Errorf(errFailedDeleteFileFmt, err) }
