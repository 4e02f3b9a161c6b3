package handler

import "errors"

var (
	errInvalidPage    = errors.New(msgInvalidPage)
	errInvalidPerPage = errors.New(msgInvalidPerPage)
)

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"

	paramID   = "id"
	paramSlug = "slug"

	queryPage      = "page"
	queryPerPage   = "per_page"
	queryFileType  = "file_type"
	queryIsPublic  = "is_public"
	querySearch    = "search"
	queryTags      = "tags"
	queryFolderID  = "folder_id"
	queryRecursive = "recursive"

	queryActorID      = "actor_id"
	queryResourceID   = "resource_id"
	queryResourceType = "resource_type"
	queryAction       = "action"
	queryStatus       = "status"
	queryLimit        = "limit"
	queryOffset       = "offset"

	formFieldFile        = "file"
	formFieldIsPublic    = "is_public"
	formFieldCustomName  = "custom_name"
	formFieldDescription = "description"
	formFieldFileType    = "file_type"
	formFieldTags        = "tags"
	formFieldFolderID    = "folder_id"

	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidID               = "invalid id"
	msgInvalidFolderID         = "invalid folder id"
	msgInvalidUserID           = "invalid user id"
	msgInvalidPage             = "invalid page number"
	msgInvalidPerPage          = "invalid per_page value"
	msgInvalidIsPublic         = "is_public must be true or false"
	msgInvalidRecursive        = "recursive must be true or false"
	msgInvalidActorID          = "invalid actor id"
	msgInvalidResourceID       = "invalid resource id"
	msgInvalidLimit            = "invalid limit"
	msgInvalidOffset           = "invalid offset"
	msgMissingUploadFile       = "multipart field 'file' is required"
	msgFileDeleted             = "File deleted successfully"
	msgFolderDeleted           = "Folder deleted successfully"
	msgUserDeleted             = "User deleted successfully"
)
