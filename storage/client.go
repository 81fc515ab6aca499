// Package storage 操作服务器端对象存储（桶与对象）。
// 桶按实例隔离，对象名里的 / 形成目录式层级，配合 prefix/delimiter 做分层列表。
package storage

import (
	"context"
	"fmt"
	"net/url"

	"astrolink-client/client"
	"astrolink-client/protocol"

	"go.uber.org/zap"
)

const objectContentType = "application/octet-stream"

// Client 对象存储客户端
type Client struct {
	client *client.Client
	logger *zap.Logger
}

// NewClient 创建对象存储客户端
func NewClient(c *client.Client) *Client {
	return &Client{
		client: c,
		logger: c.Logger(),
	}
}

// ListBuckets 列出实例下的全部桶
func (c *Client) ListBuckets(ctx context.Context, instance string) ([]*Bucket, error) {
	path := fmt.Sprintf("/buckets/%s", instance)

	var response protocol.ListBucketsResponseMsg
	if err := c.client.Get(ctx, path, nil, &response); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	buckets := make([]*Bucket, 0, len(response.Bucket))
	for i := range response.Bucket {
		buckets = append(buckets, newBucket(&response.Bucket[i], instance, c))
	}
	return buckets, nil
}

// CreateBucket 建桶（桶名在实例内唯一）
func (c *Client) CreateBucket(ctx context.Context, instance, bucketName string) error {
	path := fmt.Sprintf("/buckets/%s", instance)
	body := protocol.CreateBucketRequestMsg{Name: bucketName}
	if err := c.client.Post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucketName, err)
	}
	return nil
}

// RemoveBucket 删桶（连同桶内对象）
func (c *Client) RemoveBucket(ctx context.Context, instance, bucketName string) error {
	path := fmt.Sprintf("/buckets/%s/%s", instance, bucketName)
	if err := c.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("remove bucket %s: %w", bucketName, err)
	}
	return nil
}

// ListObjectsOptions 对象列表条件
type ListObjectsOptions struct {
	// Prefix 只列以此为前缀的对象
	Prefix string
	// Delimiter 分层列表的分隔符（通常为 "/"）：
	// 前缀之后含分隔符的对象被折叠进 Prefixes，其余进 Objects
	Delimiter string
}

// ListObjects 列出桶内对象
func (c *Client) ListObjects(ctx context.Context, instance, bucketName string, opts ListObjectsOptions) (*ObjectListing, error) {
	query := url.Values{}
	if opts.Prefix != "" {
		query.Set("prefix", opts.Prefix)
	}
	if opts.Delimiter != "" {
		query.Set("delimiter", opts.Delimiter)
	}
	path := fmt.Sprintf("/buckets/%s/%s", instance, bucketName)

	var response protocol.ListObjectsResponseMsg
	if err := c.client.Get(ctx, path, query, &response); err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	listing := &ObjectListing{prefixes: response.Prefix}
	for i := range response.Object {
		object, err := newObjectInfo(&response.Object[i], instance, bucketName, c)
		if err != nil {
			return nil, err
		}
		listing.objects = append(listing.objects, object)
	}
	return listing, nil
}

// DownloadObject 下载对象内容
func (c *Client) DownloadObject(ctx context.Context, instance, bucketName, objectName string) ([]byte, error) {
	path := fmt.Sprintf("/buckets/%s/%s/%s", instance, bucketName, objectName)
	data, err := c.client.GetRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", objectName, err)
	}
	return data, nil
}

// UploadObject 上传（或覆盖）对象内容
func (c *Client) UploadObject(ctx context.Context, instance, bucketName, objectName string, data []byte) error {
	path := fmt.Sprintf("/buckets/%s/%s/%s", instance, bucketName, objectName)
	if err := c.client.PostRaw(ctx, path, objectContentType, data); err != nil {
		return fmt.Errorf("upload object %s: %w", objectName, err)
	}
	c.logger.Debug("Object uploaded",
		zap.String("bucket", bucketName),
		zap.String("object", objectName),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// RemoveObject 删除对象
func (c *Client) RemoveObject(ctx context.Context, instance, bucketName, objectName string) error {
	path := fmt.Sprintf("/buckets/%s/%s/%s", instance, bucketName, objectName)
	if err := c.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("remove object %s: %w", objectName, err)
	}
	return nil
}
