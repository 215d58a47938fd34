package workers

import (
	"context"

	"grumbler/schemas"
	"grumbler/storage"
)

type RenameTasksExecutor struct {
	postsStorage storage.PostStorage
}

func NewRenameTasksExecutor(postsStorage storage.PostStorage) *RenameTasksExecutor {
	return &RenameTasksExecutor{postsStorage: postsStorage}
}

// ExecutePropagateAuthorRename refreshes the denormalized author name
// across all posts of one author. Best-effort: the user document was
// already updated by the time this runs.
func (rte *RenameTasksExecutor) ExecutePropagateAuthorRename(authId string, name string) error {
	ctx := context.Background()
	return rte.postsStorage.UpdateAuthorName(ctx, schemas.AuthID(authId), name)
}

func (rte *RenameTasksExecutor) GetCommandsMapping() map[string]interface{} {
	return map[string]interface{}{
		"PropagateAuthorRename": rte.ExecutePropagateAuthorRename,
	}
}
