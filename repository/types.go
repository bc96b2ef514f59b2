/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/tomoncle/commit-today/types"
	"github.com/uptrace/bun"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)
	FindOne(ctx context.Context, filter *types.QueryFilter) (*T, error)
	Exists(ctx context.Context, filter *types.QueryFilter) (bool, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)
	Create(ctx context.Context, entity ...*T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id any) error
}

// PageQueryRepository lists entities by offset page.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// CursorQueryRepository fetches keyset pages by id. ListBefore returns rows
// with id below cursor (all rows when cursor is nil) newest first; ListAfter
// returns rows with id above cursor oldest first.
type CursorQueryRepository[T any] interface {
	ListBefore(ctx context.Context, filter *types.QueryFilter, cursor *int64, limit int) ([]*T, error)
	ListAfter(ctx context.Context, filter *types.QueryFilter, cursor int64, limit int) ([]*T, error)
}

// Repository is the storage contract shared by the typed repositories. Deletes
// can join a caller's transaction so cascades stay atomic.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	CursorQueryRepository[T]
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
	DB() *bun.DB
	NewSelect() *bun.SelectQuery
	NewUpdate() *bun.UpdateQuery
}
