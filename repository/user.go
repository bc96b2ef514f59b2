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

	"github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/types"
	"github.com/uptrace/bun"
)

// UserRepository persists accounts.
type UserRepository struct {
	Repository[model.User]
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{Repository: NewRepository[model.User](db)}
}

// GetByEmail returns the user registered with email or ErrRecordNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.FindOne(ctx, types.NewQueryFilter("email = ?", email))
}
