/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements file persistence and the conversion history.
// Outputs and design manifests are written transactionally (temp file, sync,
// rename) with timestamped backups of the file being replaced. Conversions
// are recorded in an embedded SQLite database which also caches previews.
// The database is a convenience; deleting it loses history only.
package storage
