// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"time"

	"github.com/neuroforge/neuroforge-tui/internal/storage"
)

// =============================================================================
// DATE BUCKETS
// =============================================================================

// GroupedChats maps date-bucket labels ("Today", "Yesterday", "January 2") to
// chats, keeping the labels in the order they were first encountered while
// walking the input. Within a bucket, chats keep the relative order of the
// input sequence.
type GroupedChats struct {
	Labels []string
	Groups map[string][]storage.StoredChat
}

// GroupByDate buckets chats by the calendar day of their creation time,
// measured against now. The bucket for a chat is recomputed on every call;
// two calls at different real-world times may bucket the same chat
// differently.
func GroupByDate(chats []storage.StoredChat) *GroupedChats {
	return groupByDateAt(chats, time.Now())
}

// groupByDateAt is the clock-injected implementation backing GroupByDate.
func groupByDateAt(chats []storage.StoredChat, now time.Time) *GroupedChats {
	grouped := &GroupedChats{
		Groups: make(map[string][]storage.StoredChat),
	}

	today := dayOf(now)
	yesterday := dayOf(now.AddDate(0, 0, -1))

	for _, chat := range chats {
		var label string
		switch dayOf(chat.CreatedAt) {
		case today:
			label = "Today"
		case yesterday:
			label = "Yesterday"
		default:
			label = chat.CreatedAt.Format("January 2")
		}

		if _, ok := grouped.Groups[label]; !ok {
			grouped.Labels = append(grouped.Labels, label)
		}
		grouped.Groups[label] = append(grouped.Groups[label], chat)
	}

	return grouped
}

// Len returns the total number of chats across all buckets.
func (g *GroupedChats) Len() int {
	n := 0
	for _, chats := range g.Groups {
		n += len(chats)
	}
	return n
}

// IsEmpty reports whether no chats were grouped.
func (g *GroupedChats) IsEmpty() bool {
	return g == nil || len(g.Labels) == 0
}

// dayOf reduces a time to its calendar day in local time.
func dayOf(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
