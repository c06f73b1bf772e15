/*
Copyright The Strongbox Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package downloader stores repository artifacts on disk.

Transfers are written to a ".part" file next to the destination and resumed
from its size with a range request when a previous attempt was interrupted.
The destination only appears once the transfer is complete and, depending on
the verification strategy, matches its published checksum.
*/
package downloader
