/*
Package domain contains the value types shared across the cadre engine:
job and step definitions, run results, event names and error records.

These types are plain data. All behavior (execution, input resolution,
event emission) lives in the runtime and in the container types of the
root package.
*/
package domain
