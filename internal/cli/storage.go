package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"astrolink-client/storage"
)

const storageUsage = `usage: astrolink-cli storage COMMAND ...

Commands:
  ls    List buckets or objects
  list  Synonym for ls
  mb    Make buckets
  rb    Remove buckets
  cat   Concatenate object content to stdout
  cp    Copy a file or object
  rm    Remove objects

Objects are addressed as BUCKET://OBJECT.
`

// splitObjectURL 把 BUCKET://OBJECT 拆成桶名与对象名
func splitObjectURL(raw string) (bucket, object string, ok bool) {
	bucket, object, ok = strings.Cut(raw, "://")
	return bucket, object, ok && bucket != ""
}

// runStorage 对象存储的桶与对象管理
func (a *App) runStorage(s *session, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing storage command\n%s", storageUsage)
	}
	instance, err := s.requireInstance()
	if err != nil {
		return err
	}
	c := storage.NewClient(s.client())
	ctx := context.Background()

	switch args[0] {
	case "ls", "list":
		flags := flag.NewFlagSet("storage ls", flag.ContinueOnError)
		flags.SetOutput(a.stderr)
		long := flags.Bool("l", false, "list in long format")
		recurse := flags.Bool("r", false, "list recursively")
		if err := flags.Parse(args[1:]); err != nil {
			return &usageError{message: "invalid storage ls flags"}
		}
		if flags.NArg() > 1 {
			return usageErrorf("usage: astrolink-cli storage ls [-l] [-r] [BUCKET[://PREFIX]]")
		}
		if flags.NArg() == 0 {
			buckets, err := c.ListBuckets(ctx, instance)
			if err != nil {
				return err
			}
			for _, bucket := range buckets {
				fmt.Fprintln(a.stdout, bucket.Name())
			}
			return nil
		}
		return a.listObjects(ctx, c, instance, flags.Arg(0), *long, *recurse)

	case "mb":
		if len(args) < 2 {
			return usageErrorf("usage: astrolink-cli storage mb BUCKET ...")
		}
		for _, bucket := range args[1:] {
			if err := c.CreateBucket(ctx, instance, bucket); err != nil {
				return err
			}
		}
		return nil

	case "rb":
		if len(args) < 2 {
			return usageErrorf("usage: astrolink-cli storage rb BUCKET ...")
		}
		for _, bucket := range args[1:] {
			if err := c.RemoveBucket(ctx, instance, bucket); err != nil {
				return err
			}
		}
		return nil

	case "cat":
		if len(args) < 2 {
			return usageErrorf("usage: astrolink-cli storage cat BUCKET://OBJECT ...")
		}
		for _, raw := range args[1:] {
			bucket, object, ok := splitObjectURL(raw)
			if !ok {
				return usageErrorf("specify objects in the format BUCKET://OBJECT, got %q", raw)
			}
			content, err := c.DownloadObject(ctx, instance, bucket, object)
			if err != nil {
				return err
			}
			a.stdout.Write(content)
		}
		return nil

	case "cp":
		if len(args) != 3 {
			return usageErrorf("usage: astrolink-cli storage cp SRC DST")
		}
		return a.copyObject(ctx, c, instance, args[1], args[2])

	case "rm":
		if len(args) < 2 {
			return usageErrorf("usage: astrolink-cli storage rm BUCKET://OBJECT ...")
		}
		for _, raw := range args[1:] {
			bucket, object, ok := splitObjectURL(raw)
			if !ok {
				return usageErrorf("specify objects in the format BUCKET://OBJECT, got %q", raw)
			}
			if err := c.RemoveObject(ctx, instance, bucket, object); err != nil {
				return err
			}
		}
		return nil

	case "--help", "-h", "help":
		fmt.Fprint(a.stdout, storageUsage)
		return nil

	default:
		return usageErrorf("unknown storage command %q\n%s", args[0], storageUsage)
	}
}

func (a *App) listObjects(ctx context.Context, c *storage.Client, instance, target string, long, recurse bool) error {
	bucket := target
	prefix := ""
	if b, p, ok := splitObjectURL(target); ok {
		bucket, prefix = b, p
	}

	opts := storage.ListObjectsOptions{Prefix: prefix}
	if !recurse {
		opts.Delimiter = "/"
	}
	listing, err := c.ListObjects(ctx, instance, bucket, opts)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, p := range listing.Prefixes() {
		url := bucket + "://" + p
		if long {
			rows = append(rows, []string{"0", "", url})
		} else {
			rows = append(rows, []string{url})
		}
	}
	for _, object := range listing.Objects() {
		url := bucket + "://" + object.Name()
		if long {
			created := ""
			if t := object.Created(); t != nil {
				created = t.Format(time.RFC3339)
			}
			rows = append(rows, []string{strconv.FormatInt(object.Size(), 10), created, url})
		} else {
			rows = append(rows, []string{url})
		}
	}
	printTable(a.stdout, rows)
	return nil
}

// copyObject 在对象与本地文件之间复制；两端都是对象时经内存中转
func (a *App) copyObject(ctx context.Context, c *storage.Client, instance, src, dst string) error {
	srcBucket, srcObject, srcIsObject := splitObjectURL(src)
	dstBucket, dstObject, dstIsObject := splitObjectURL(dst)

	switch {
	case srcIsObject && dstIsObject:
		content, err := c.DownloadObject(ctx, instance, srcBucket, srcObject)
		if err != nil {
			return err
		}
		return c.UploadObject(ctx, instance, dstBucket, dstObject, content)

	case srcIsObject:
		content, err := c.DownloadObject(ctx, instance, srcBucket, srcObject)
		if err != nil {
			return err
		}
		target := dst
		if info, err := os.Stat(dst); err == nil && info.IsDir() {
			target = filepath.Join(dst, filepath.Base(srcObject))
		}
		return os.WriteFile(target, content, 0o644)

	case dstIsObject:
		content, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		if dstObject == "" {
			dstObject = filepath.Base(src)
		}
		return c.UploadObject(ctx, instance, dstBucket, dstObject, content)

	default:
		return usageErrorf("at least one of SRC and DST must be an object (BUCKET://OBJECT)")
	}
}
