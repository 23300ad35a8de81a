/*
Package ports defines the boundary interfaces of the cadre engine.

The engine consumes Units (leaf task performers) and GroupRunners
(group-shaped dispatch targets) and optionally persists finished runs
through a RunStore. Implementations live under pkg/adapters and pkg/unit;
the engine itself never depends on a concrete collaborator.
*/
package ports
