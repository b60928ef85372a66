/*
Package session owns one conversation context per session id.

It serialises access to a session inside the process with reference-counted
mutexes and, when a DistributedLocker is configured, across replicas sharing
the same context store.
*/
package session
