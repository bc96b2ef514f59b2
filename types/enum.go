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

package types

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// ResponseMessage is the human readable status attached to every API envelope.
type ResponseMessage int

const (
	MessageSuccess ResponseMessage = iota
	MessageFail
	MessageCreateSuccess
	MessageUpdateSuccess
	MessageLoginSuccess
	MessageLogoutSuccess
)

var responseMessages = [...]struct{ name, desc string }{
	MessageSuccess:       {"SUCCESS", "Request Success"},
	MessageFail:          {"FAIL", "Request Fail"},
	MessageCreateSuccess: {"CREATE_SUCCESS", "Create Successfully"},
	MessageUpdateSuccess: {"UPDATE_SUCCESS", "Update Successfully"},
	MessageLoginSuccess:  {"LOGIN_SUCCESS", "Login Successfully"},
	MessageLogoutSuccess: {"LOGOUT_SUCCESS", "Logout Successfully"},
}

var _ BaseEnum = MessageSuccess

func (m ResponseMessage) IsValid() bool {
	return m >= 0 && int(m) < len(responseMessages)
}

func (m ResponseMessage) Number() int {
	if !m.IsValid() {
		return IllegalValue
	}
	return int(m)
}

// String returns the message text sent to clients.
func (m ResponseMessage) String() string { return m.Desc() }

func (m ResponseMessage) Desc() string {
	if !m.IsValid() {
		return IllegalDesc
	}
	return responseMessages[m].desc
}

func (m ResponseMessage) Name() string {
	if !m.IsValid() {
		return IllegalName
	}
	return responseMessages[m].name
}
