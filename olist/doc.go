// Package olist implements an intrusive, doubly linked list with O(1)
// head/tail insert and remove, plus ordered insertion via a caller-supplied
// comparator.
//
// "Intrusive" means the link fields live inside the element itself (a
// [Link]), not in a wrapper node the list allocates — the same element can
// therefore sit on several independent lists at once (e.g. a thread control
// block is simultaneously a member of the all-threads registry and, at
// different points in its life, the ready list or the sleep queue) without
// any extra allocation or copying.
//
// All operations assume the caller holds whatever exclusion discipline the
// list requires; olist itself does no locking.
package olist
