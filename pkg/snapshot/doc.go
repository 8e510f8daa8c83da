// Package snapshot stores rendered output of a realized tree.
//
// A snapshot is either the HTML of the tree or its msgpack encoding. Stores
// write named snapshots to a local directory or to an S3 bucket:
//
//	store, err := snapshot.Open("s3://my-bucket/runs/", snapshot.S3Config{Region: "us-east-1"})
//	loc, err := snapshot.Save(ctx, store, "step-0", root, snapshot.FormatHTML)
package snapshot
