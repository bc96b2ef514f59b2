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

package model

import (
	"github.com/tomoncle/commit-today/database"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	Timestamps
	Email     string `bun:"email,type:varchar(255),notnull,unique" json:"email"`
	Password  string `bun:"password,type:varchar(255),notnull" json:"-"`
	Username  string `bun:"username,type:varchar(50),notnull" json:"username"`
	FirstName string `bun:"first_name,type:varchar(50),notnull" json:"first_name"`
	LastName  string `bun:"last_name,type:varchar(50),notnull" json:"last_name"`
}

func (u *User) GetID() int64 { return u.ID }

func init() {
	database.RegisteredModel(database.NewModelAdapter((*User)(nil), 10))
}
