package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	SkillCatalogKeyPrefix = "skills:catalog"
)

const (
	UserTTL         = 5 * time.Minute
	SkillCatalogTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SkillCatalogKey() string {
	return SkillCatalogKeyPrefix
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
