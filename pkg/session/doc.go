/*
Package session implements response-session management and persistence orchestration.

It serialises concurrent answers to the same session (two browser tabs, a retried
HTTP request) with per-session locks, optionally backed by a distributed locker
so several replicas can share one StateStore.
*/
package session
