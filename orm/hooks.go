package orm

import (
	"package-index/storage"
)

// UploadCleanupHook builds the delete hook that removes an upload's files
// from the given store. The primary artifact must exist: its removal fails
// loudly. The detached signature is co-located under path+".asc" and is
// removed only if present.
//
// The hook runs after the row delete has committed. There is no retry and no
// compensating action: a removal failure surfaces to the caller with the row
// already gone.
func UploadCleanupHook(store storage.Store) UploadDeleteHook {
	return func(upload *ProjectUpload) error {
		if err := store.Remove(upload.Path); err != nil {
			return err
		}

		return store.RemoveIfExists(upload.Path + ".asc")
	}
}
