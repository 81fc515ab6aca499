package storage

import (
	"context"
	"fmt"
	"time"

	"astrolink-client/protocol"
)

// Bucket 对象存储桶，带回指客户端的便捷操作
type Bucket struct {
	msg      *protocol.BucketInfoMsg
	instance string
	client   *Client
}

func newBucket(msg *protocol.BucketInfoMsg, instance string, client *Client) *Bucket {
	return &Bucket{msg: msg, instance: instance, client: client}
}

// Name 桶名
func (b *Bucket) Name() string {
	return b.msg.Name
}

// ObjectCount 桶内对象数
func (b *Bucket) ObjectCount() int64 {
	if b.msg.NumObjects == nil {
		return 0
	}
	return *b.msg.NumObjects
}

// Size 桶内对象总字节数（不含元数据）
func (b *Bucket) Size() int64 {
	if b.msg.Size == nil {
		return 0
	}
	return *b.msg.Size
}

// ListObjects 列出桶内对象
func (b *Bucket) ListObjects(ctx context.Context, opts ListObjectsOptions) (*ObjectListing, error) {
	return b.client.ListObjects(ctx, b.instance, b.msg.Name, opts)
}

// DownloadObject 下载桶内对象
func (b *Bucket) DownloadObject(ctx context.Context, objectName string) ([]byte, error) {
	return b.client.DownloadObject(ctx, b.instance, b.msg.Name, objectName)
}

// UploadObject 上传（或覆盖）桶内对象
func (b *Bucket) UploadObject(ctx context.Context, objectName string, data []byte) error {
	return b.client.UploadObject(ctx, b.instance, b.msg.Name, objectName, data)
}

// DeleteObject 删除桶内对象
func (b *Bucket) DeleteObject(ctx context.Context, objectName string) error {
	return b.client.RemoveObject(ctx, b.instance, b.msg.Name, objectName)
}

// Delete 整桶删除
func (b *Bucket) Delete(ctx context.Context) error {
	return b.client.RemoveBucket(ctx, b.instance, b.msg.Name)
}

func (b *Bucket) String() string {
	return b.msg.Name
}

// ObjectListing 一次对象列表的结果。
// 带分隔符列表时，Prefixes 是被截断的"目录"，Objects 是当前层的对象。
type ObjectListing struct {
	prefixes []string
	objects  []*ObjectInfo
}

// Prefixes 目录式前缀
func (l *ObjectListing) Prefixes() []string {
	return l.prefixes
}

// Objects 对象元数据
func (l *ObjectListing) Objects() []*ObjectInfo {
	return l.objects
}

// ObjectInfo 存储对象元数据，带回指客户端的便捷操作
type ObjectInfo struct {
	msg      *protocol.ObjectInfoMsg
	instance string
	bucket   string
	client   *Client
	created  *time.Time
}

func newObjectInfo(msg *protocol.ObjectInfoMsg, instance, bucket string, client *Client) (*ObjectInfo, error) {
	o := &ObjectInfo{msg: msg, instance: instance, bucket: bucket, client: client}
	if msg.CreatedUTC != "" {
		t, err := protocol.ParseISOString(msg.CreatedUTC)
		if err != nil {
			return nil, fmt.Errorf("object %s: created time: %w", msg.Name, err)
		}
		o.created = &t
	}
	return o, nil
}

// Name 对象名（可含 / 形成目录层级）
func (o *ObjectInfo) Name() string {
	return o.msg.Name
}

// Size 对象字节数（不含元数据）
func (o *ObjectInfo) Size() int64 {
	if o.msg.Size == nil {
		return 0
	}
	return *o.msg.Size
}

// Created 对象创建（或重建）时间；缺失返回 nil
func (o *ObjectInfo) Created() *time.Time {
	return o.created
}

// Metadata 对象上的键值元数据
func (o *ObjectInfo) Metadata() map[string]string {
	return o.msg.Metadata
}

// Download 下载该对象
func (o *ObjectInfo) Download(ctx context.Context) ([]byte, error) {
	return o.client.DownloadObject(ctx, o.instance, o.bucket, o.msg.Name)
}

// Upload 覆盖该对象的内容
func (o *ObjectInfo) Upload(ctx context.Context, data []byte) error {
	return o.client.UploadObject(ctx, o.instance, o.bucket, o.msg.Name, data)
}

// Delete 删除该对象
func (o *ObjectInfo) Delete(ctx context.Context) error {
	return o.client.RemoveObject(ctx, o.instance, o.bucket, o.msg.Name)
}

func (o *ObjectInfo) String() string {
	return fmt.Sprintf("%s (%d bytes, created %v)", o.msg.Name, o.Size(), o.created)
}
