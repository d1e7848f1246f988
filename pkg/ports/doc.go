/*
Package ports defines the driven ports (interfaces) of the form-flow engine.

These interfaces decouple navigation from storage, transport and AI
collaborators, so the same engine runs against memory, Redis, SQLite,
YAML files or a Loam repository.

# Key Interfaces

  - FormLoader / FormStore: read and persist form graphs.
  - StateStore: persists response-session State between answers.
  - ResponseStore: records the answer set of completed sessions.
  - DistributedLocker: serialises access to one session across replicas.
  - Phraser: optional AI collaborator that rewrites question text.
*/
package ports
