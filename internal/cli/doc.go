// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the portal command line.
//
// Running portal with no subcommand on a terminal starts the full-screen
// client. The subcommands script the same backend without the UI:
//
//	portal login | register | logout | whoami
//	portal assistants [--json]
//	portal ask <assistant> <message...>
//	portal chat <assistant>
//	portal chats list [--filter q] | show <id> | export [<id>]
//	portal config show | path | init
//	portal serve
//	portal version
//
// Commands return errors; Execute prints them as "Error: ..." on stderr and
// exits with status 1.
package cli
