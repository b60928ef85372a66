/*
Package ports defines the driven ports (interfaces) of the BIM action agent.

These interfaces decouple the interpreter and the capability catalog from the concrete
3D viewer and from the storage used for conversation contexts.

# Key Interfaces

  - Model: one loaded BIM model (categories, items, data, boxes, materials).
  - Camera, Scene, Fragments, World: the viewer surface used for framing, procedural
    geometry and redraws.
  - ContextStore: persists per-session ConversationContext documents.
  - DistributedLocker: coordinates session access across replicas.
*/
package ports
