package shortcut

import (
	"context"

	"shortcutreport/internal/domain"
)

// ResolveOwners looks up every distinct id once, in order. Lookup failures
// are logged and mapped to domain.UnknownUser.
func (c *Client) ResolveOwners(ctx context.Context, ownerIDs []string) domain.OwnerDirectory {
	dir := make(domain.OwnerDirectory, len(ownerIDs))
	for _, id := range ownerIDs {
		if id == "" {
			continue
		}
		if _, ok := dir[id]; ok {
			continue
		}
		name, err := c.GetMemberName(ctx, id)
		if err != nil {
			c.logf("shortcut member lookup failed id=%s err=%v", id, err)
			name = domain.UnknownUser
		}
		dir[id] = name
	}
	return dir
}
