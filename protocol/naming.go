package protocol

import (
	"fmt"
	"strings"
)

// 参数可按两种形式寻址：完全限定名（以 / 开头）或 NAMESPACE/NAME 别名。
// 服务器不认识别名约定，发请求前拆成独立的 namespace 与 name 字段。

// BuildNamedObjectID 把参数名拆解为线上标识
func BuildNamedObjectID(parameter string) (NamedObjectId, error) {
	if strings.HasPrefix(parameter, "/") {
		return NamedObjectId{Name: parameter}, nil
	}
	parts := strings.SplitN(parameter, "/", 2)
	if len(parts) < 2 {
		return NamedObjectId{}, fmt.Errorf(
			"failed to process %q: use a fully-qualified name or an alias in the format NAMESPACE/NAME", parameter)
	}
	return NamedObjectId{Namespace: parts[0], Name: parts[1]}, nil
}

// BuildNamedObjectIDs 批量版 BuildNamedObjectID
func BuildNamedObjectIDs(parameters []string) ([]NamedObjectId, error) {
	ids := make([]NamedObjectId, 0, len(parameters))
	for _, parameter := range parameters {
		id, err := BuildNamedObjectID(parameter)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AdaptNameForREST 把参数名整理成 REST 路径片段（保证以 / 开头）
func AdaptNameForREST(name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return name, nil
	}
	if !strings.Contains(name, "/") {
		return "", fmt.Errorf(
			"failed to process %q: use a fully-qualified name or an alias in the format NAMESPACE/NAME", name)
	}
	return "/" + name, nil
}
